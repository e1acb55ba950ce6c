// Package commands defines the multiform CLI.
//
// Commands
//
//   - fill   Prompt for every form, submit them together and print the result
//   - list   Print the loaded form definitions
//
// Definitions come from a directory of YAML/JSON files (--dir), from the
// request bodies of an OpenAPI document (--openapi, --operation), or from the
// bundled samples when neither flag is given.
package commands
