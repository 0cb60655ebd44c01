// Package config provides configuration structures and utilities for a11yscan.
// It defines the run tuning options, fetch source selection, report output
// preferences, and the optional rule phrase overrides loaded from .a11yscan.
package config
