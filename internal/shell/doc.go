// Package shell provides the interactive terminal front end: the main menu,
// URL and format prompts, progress lines and localized messages.
package shell
