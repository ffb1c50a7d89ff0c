package lookup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Cache holds lookup results. A zero path keeps it in memory only.
type Cache struct {
	path    string
	dirty   bool
	entries cacheFile
}

type cacheFile struct {
	Parameters map[string]string `yaml:"parameters,omitempty"`
	Vpcs       map[string]Vpc    `yaml:"vpcs,omitempty"`
}

// NewCache returns an empty cache saved to path.
func NewCache(path string) *Cache {
	return &Cache{
		path: path,
		entries: cacheFile{
			Parameters: make(map[string]string),
			Vpcs:       make(map[string]Vpc),
		},
	}
}

// LoadCache reads the cache at path. A missing file yields an empty cache.
func LoadCache(path string) (*Cache, error) {
	c := NewCache(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lookup cache: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing lookup cache %s: %w", path, err)
	}
	if c.entries.Parameters == nil {
		c.entries.Parameters = make(map[string]string)
	}
	if c.entries.Vpcs == nil {
		c.entries.Vpcs = make(map[string]Vpc)
	}
	return c, nil
}

// Parameter returns a cached parameter value.
func (c *Cache) Parameter(name string) (string, bool) {
	v, ok := c.entries.Parameters[name]
	return v, ok
}

// SetParameter records a parameter value.
func (c *Cache) SetParameter(name, value string) {
	c.entries.Parameters[name] = value
	c.dirty = true
}

// Vpc returns a cached VPC.
func (c *Cache) Vpc(id string) (Vpc, bool) {
	v, ok := c.entries.Vpcs[id]
	return v, ok
}

// SetVpc records a VPC.
func (c *Cache) SetVpc(v Vpc) {
	c.entries.Vpcs[v.VpcID] = v
	c.dirty = true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries.Parameters = make(map[string]string)
	c.entries.Vpcs = make(map[string]Vpc)
	c.dirty = true
}

// Save writes the cache if it changed since it was loaded.
func (c *Cache) Save() error {
	if c.path == "" || !c.dirty {
		return nil
	}
	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encoding lookup cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing lookup cache: %w", err)
	}
	c.dirty = false
	return nil
}
