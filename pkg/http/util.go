package http

import xutil "MarketCoach/pkg/util"

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseSymbols reads a comma separated symbol list from a query value.
func ParseSymbols(s string) []string { return xutil.ParseSymbolsCSV(s) }
