package model

// Package model defines domain data structures used across the app: tasks and
// their intents, runner state, raw progress events, UI status updates and the
// error kinds reported by external media tools.
