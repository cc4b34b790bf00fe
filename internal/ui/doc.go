// Package ui contains the Fyne desktop front end. RootUI implements
// queue.Events, marshals every callback onto the Fyne thread and forwards
// user intents to queue.Commands. All UI strings are localized via
// Localization.
package ui
