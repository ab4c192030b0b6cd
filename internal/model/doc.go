package model

// Package model defines the domain data structures shared across the app:
// stream descriptors (formats), pipeline runs, their state machine and
// progress snapshots. Structures are plain values with explicit state
// transitions driven by the pipeline package.
