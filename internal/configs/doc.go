// Package configs holds the two configuration documents of dotenvpull.
//
// # Local Configuration
//
// The client keeps its durable state in a JSON file, dotenvpull_config.json
// in the working directory by default:
//
//	{
//	  "api_url": "http://localhost:8080",
//	  "app1": {"access_key": "...", "encryption_key": "..."}
//	}
//
// The reserved api_url member holds the server address. Every other member
// is a project entry holding the access key issued by the server and the
// base64 encryption key that never leaves the client. LocalConfig is the
// typed form of this file. It is loaded once per invocation, validated on
// load, and saved explicitly by the workflow that changed it.
//
// # Server Configuration
//
// ServerConfig is built from defaults, an optional TOML file, the
// environment (optionally pre-loaded from a .env file) and finally command
// line flags, in increasing order of precedence.
package configs
