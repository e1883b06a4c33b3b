package id

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once

	errNotInitialized = errors.New("snowflake node not initialized")
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 id. Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns a base36 id, short enough for request ids.
func NewString() (string, error) {
	if node == nil {
		return "", errNotInitialized
	}
	return node.Generate().Base36(), nil
}
