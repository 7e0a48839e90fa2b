package ui

// Package ui contains the Fyne desktop window of the application. It turns
// user input into tasks for the runner and renders the status updates the
// runner publishes. Widgets are only touched on the Fyne goroutine: updates
// from workers arrive through a status.Channel and are applied via fyne.Do.
