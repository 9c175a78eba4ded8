// Package config loads typed configuration from the process environment.
//
// Structs declare their variables with caarlos0/env tags. Load parses a
// struct once per type and serves later calls from a cache, so packages can
// ask for their own Config without threading it through constructors:
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	manager, err := session.NewFromConfig(cfg)
//
// The first Load reads an optional .env file from the working directory.
// LoadEnv reads explicit files instead; later files override earlier ones and
// variables already set in the process always win.
//
// A failed parse is reported as ErrParsingConfig and is not cached, so fixing
// the environment and calling Load again succeeds. Load rejects non-struct
// types with ErrInvalidConfigType and nil pointers with ErrNilPointer.
//
// Tests that change the environment use ForceReloadConfig for one type or
// ResetCache for all of them.
package config
