// Package validation checks flat string maps against pipe-separated rules.
//
// It guards the edges of the engine: environment configuration and rule
// files are validated here before they reach the container.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "type":  "App.Logger",
//	    "level": "debug",
//	}, validation.Rules{
//	    "type":  "required|identifier",
//	    "level": "required|in:debug,info,warn,error",
//	})
//
//	if v.Fails() {
//	    // v.Errors() returns *Errors with Bag map[string][]string
//	}
//
// Check is the one-call form returning an error:
//
//	err := validation.Check(data, rules)
//
// # Available Rules
//
// String rules:
//   - required     field must be present and non-empty
//   - min:n        minimum n UTF-8 characters
//   - max:n        maximum n UTF-8 characters
//   - alpha_dash   letters, numbers, dashes, underscores
//   - regex:pattern
//
// Format rules:
//   - identifier   a type name such as Logger, app.Logger or \App\Logger, or *
//   - addr         host:port as accepted by net.Listen
//   - numeric, integer, boolean
//
// Set rules:
//   - in:a,b,c
//   - not_in:a,b,c
//
// Control rules:
//   - nullable     empty values skip the remaining rules
//   - sometimes    absent fields skip the remaining rules
//
// # Error Bag
//
//	{
//	  "errors": {
//	    "level": ["The selected level is invalid."]
//	  }
//	}
package validation
