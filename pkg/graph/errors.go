package graph

import "errors"

// ErrCorruptPortMap is returned when a persisted port map cannot be
// restored because its key and value sequences differ in length. This
// indicates a corrupted or partially-serialized store; there is no
// partial recovery.
var ErrCorruptPortMap = errors.New("corrupt port map: key/value length mismatch")

// ErrNodeNotFound is returned when a node is not owned by the graph.
var ErrNodeNotFound = errors.New("node not found in graph")

// ErrPortNotFound is returned when a port cannot be resolved on its node.
var ErrPortNotFound = errors.New("port not found")

// ErrPortExists is returned when adding a port whose field name and
// direction are already taken on the node.
var ErrPortExists = errors.New("port already exists")

// ErrInvalidConnection is returned when two ports cannot be connected
// (same direction, nil endpoint, self-connection, or failed type check).
var ErrInvalidConnection = errors.New("invalid connection")

// ErrStaticPort is returned when removing a port that was declared
// statically; only dynamic ports are removable.
var ErrStaticPort = errors.New("port is not dynamic")
