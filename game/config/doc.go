// Package config provides rules profile management for Word Duel.
//
// The config package handles:
//   - Loading rules profiles from JSON files
//   - Falling back to the built-in classic and strict profiles
//   - Default profile selection
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as <id>.json in the configs directory:
//
//	{
//	  "name": "strict",
//	  "description": "Players alternate guesses",
//	  "strict_turns": true,
//	  "word_length": 5
//	}
//
// A file named after a built-in profile replaces it.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//
//	if err := manager.SetDefault("strict"); err != nil {
//		log.Fatal().Err(err).Send()
//	}
//	registry := session.NewRegistry(nil, manager.GetDefault())
package config
