// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] wraps a [session.State] and drives it with [session.Update]. Key presses become
// session events, and each effect returned by the reducer runs as a [tea.Cmd] through a
// [session.Executor] whose follow-up event is fed back in as a [Msg]. The view follows the
// session phase:
//  1. Settings : Spotify client id form, forced open while no id is stored
//  2. Login : connect prompt, waiting for the loopback callback after navigation
//  3. Session : recent tracks (bubbles list), genre bar and the story viewport
//
// Story text is shown with Markdown headings and **bold** runs styled via lipgloss.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
