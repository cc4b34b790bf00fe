// Package model defines domain data structures used across the app: queue
// items, encoding variants, playlist entries and the queue status enum.
// Structures are plain values so adapters can hold snapshots without sharing
// state with the queue loop.
package model
