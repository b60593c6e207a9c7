//go:build !darwin

package backend

func preflight() error { return nil }
