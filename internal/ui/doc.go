// Package ui provides semantic text formatting for dotenvpull CLI output.
//
// Formatters render content with color when the terminal supports it and
// fall back to plain text decorations when NO_COLOR is set or color is
// unavailable:
//
//	ui.Code.Sprint("dotenvpull update app1")  // `dotenvpull update app1`
//	ui.Path.Sprint(".env")                    // .env
//	ui.Highlight.Sprint("app1")               // 'app1'
//	ui.Muted.Sprint("unknown")                // (unknown)
//
// Final messages of commands are built with Succeeded, Failed and Hint so
// every command prints the same ✓ / ✗ / → shapes.
package ui
