// Package viz is the interactive terminal front end built on Bubble Tea.
//
// [App] walks through three screens: a parameter form, the live drop
// rendered on a braille [Canvas] through a [Scene], and the velocity-time
// plot of the finished run.
//
// # Key Bindings
//
//	Form:  ↑/↓ select field, ←/→ toggle ground, Enter start, Esc quit
//	Drop:  Space pause, Esc back, G record GIF, T cycle theme, ? help
//	Plot:  Enter new run, Q quit
package viz
