// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// Config is the full set of knobs the cauchy node accepts, loadable from a
// TOML file and overridable by CLI flags (see cmd/cauchy).
type Config struct {
	Bind           string // peer listening address
	RPCBind        string // management RPC address
	MiningThreads  int    // mining worker pool size
	Radius         int    // sketch capacity
	SampleSize     int    // heartbeat peer sample size
	HeartbeatMS    int    // heartbeat interval in milliseconds
	PeerBufferSize int    // loaded but not read: peer channels always use peer.BufferSize
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		Bind:           "127.0.0.1:1080",
		RPCBind:        "0.0.0.0:2080",
		MiningThreads:  1,
		Radius:         32,
		SampleSize:     8,
		HeartbeatMS:    5000,
		PeerBufferSize: 128,
	}
}

// tomlSettings mirrors the teacher's convention of using Go field names
// verbatim as TOML keys rather than lower-casing them.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadFile merges a TOML configuration file into cfg.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tomlSettings.NewDecoder(f).Decode(cfg)
}
