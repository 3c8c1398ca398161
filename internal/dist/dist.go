package dist

import (
	"fmt"
	"os"
	"strconv"
)

var lookupEnv = os.LookupEnv

// Context describes this process's place in a distributed generation group.
// Absence of a launcher environment is the valid default: rank 0 in a group
// of one, bound to the default device.
type Context struct {
	Rank      int
	WorldSize int
	LocalRank int
	Device    string
}

// IsOwner reports whether this process performs output emission. Every rank
// still runs preparation and generation for collective consistency; only the
// owner touches the filesystem.
func (c Context) IsOwner() bool { return c.Rank == 0 }

// Distributed reports whether a group of size > 1 is active.
func (c Context) Distributed() bool { return c.WorldSize > 1 }

// Resolve reads the torchrun-style launcher environment (WORLD_SIZE, RANK,
// LOCAL_RANK) and binds a device to this rank. There are no error
// conditions; malformed values fall back to the single-process default.
func Resolve() Context {
	ctx := Context{Rank: 0, WorldSize: 1, LocalRank: 0, Device: "cuda"}

	world := envInt("WORLD_SIZE", 1)
	if world <= 1 {
		return ctx
	}

	ctx.WorldSize = world
	ctx.Rank = clamp(envInt("RANK", 0), 0, world-1)
	ctx.LocalRank = envInt("LOCAL_RANK", ctx.Rank)
	ctx.Device = fmt.Sprintf("cuda:%d", ctx.LocalRank)
	return ctx
}

func envInt(key string, fallback int) int {
	raw, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
