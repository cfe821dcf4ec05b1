// Package shell holds the wt-utils integration script.
//
// The script is embedded into the binary so that `wt utils` can print it
// and `wt utils install` can place it next to the wt binary, where users
// source it from their shell startup file.
package shell
