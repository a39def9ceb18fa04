// Package model holds the Member and Team entities, their schema entries,
// typed query paths and the DTOs results are projected into.
package model
