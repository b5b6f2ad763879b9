// Package ui provides the CineVibe terminal interface, built on Bubble Tea.
//
// # Architecture Overview
//
// Model is the single tea.Model. It owns no collection data: every list on
// screen is a view-model from package social, and the UI reads its current
// View on each render. Loads and writes block, so they run as tea.Cmd
// goroutines and report back with loadedMsg or opDoneMsg.
//
// Each open screen has its own context and a Watch on its list and
// operation machine; the profile cache is watched too. Watchers only nudge a
// one-slot channel, and waitForChange turns that into a changedMsg so
// operation resets and background refreshes repaint at once. Closing a
// screen (esc, or tab on Connections) cancels its context and its watch, so
// its in-flight requests stop. A slow tick (UIRefreshInterval) keeps
// relative times and flash messages current.
//
// # Screens
//
// Four roots are reachable with 1-4: Movies, Connections, My reviews and
// Log. Each root keeps a stack of screens:
//
//   - Movies → enter opens the movie's reviews → enter opens a review's comments
//   - Connections → tab cycles followers, following and pending requests
//   - My reviews → enter opens comments
//
// esc pops back towards the root. Reaching the last few rows of a list
// requests the next page.
//
// # Writes
//
// L likes, f follows, a/x answer pending requests. c opens the compose form;
// e and d act only on the signed-in user's own items, and d asks first.
// Form input is validated locally before any request is made. Progress and
// outcome are read from the screen's operation.Machine and shown in the
// status line.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context:  ctx,
//		Backend:  client,
//		Profile:  profiles,
//		Identity: id,
//		LogPath:  cfg.LogPath,
//	})
package ui
