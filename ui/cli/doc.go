// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the boardlock command line using Cobra. It loads
// the configuration, opens the store and hands every command a loaded
// core.Panel. Commands stay thin: scanning, dispatching and the schedule
// live in the internal packages.
package cli
