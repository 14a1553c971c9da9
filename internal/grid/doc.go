// Package grid implements the lane x position occupancy grid of the plaza.
//
// Cells hold arena slots, never vehicle pointers. The engine keeps two grids:
// the committed "current" grid that every rule reads, and the "next" grid
// being built during a tick. Writes into the next grid go through Claim, so
// the first writer of a cell wins and later contenders observe the claim.
//
// All queries are read-only and O(track length) in the worst case.
package grid
