package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/sim"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
)

type StorageConfig struct {
	Locations  AssetConfig[*world.Location]   `json:"locations"`
	Characters AssetConfig[*npc.Character]    `json:"characters"`
	Quests     AssetConfig[*quest.Quest]      `json:"quests"`
	Milestones AssetConfig[*player.Milestone] `json:"milestones"`
}

func (c *StorageConfig) BuildDictionary() (*sim.Dictionary, error) {
	locations, err := c.Locations.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating location store: %w", err)
	}
	characters, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}
	quests, err := c.Quests.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating quest store: %w", err)
	}
	milestones, err := c.Milestones.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating milestone store: %w", err)
	}

	dict := &sim.Dictionary{
		Locations:  locations,
		Characters: characters,
		Quests:     quests,
		Milestones: milestones,
	}

	if err := dict.Resolve(); err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return dict, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Locations.Validate("locations"))
	el.Add(c.Characters.Validate("characters"))
	el.Add(c.Quests.Validate("quests"))
	el.Add(c.Milestones.Validate("milestones"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
