// Package config loads wt settings from two places:
//
//   - the user file ~/.wtrc (or $WTRC), written as shell-style KEY="value"
//     assignments so it can also be sourced by wt-utils. It is parsed with
//     github.com/joho/godotenv.
//   - an optional project file at the main repository root (.wt.yaml,
//     .wt.yml or .wt.json). YAML is decoded with gopkg.in/yaml.v3; the JSON
//     form may contain comments, which github.com/tidwall/jsonc strips
//     before encoding/json parses it.
//
// Merge combines both into the Settings used by the CLI. Command-line flags
// are applied on top by the cli package.
package config
