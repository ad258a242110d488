package bodies

import (
	"errors"
	"strings"
)

var ErrUnknownBody = errors.New("unknown celestial body")

// Body describes one celestial body the viewer can display: where its raster
// tiles come from, how deep the imagery goes, and what attribution the tile
// provider requires.
type Body struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// Registry is the static mapping from body key to tile source. Keys are
// matched case-insensitively.
type Registry struct {
	bodies map[string]Body
	order  []string
}

func NewRegistry() *Registry {
	return NewRegistryFrom(defaultBodies)
}

// NewRegistryFrom builds a registry from an explicit body list. Entry order
// is preserved by List.
func NewRegistryFrom(list []Body) *Registry {
	r := &Registry{bodies: make(map[string]Body)}
	for _, b := range list {
		r.bodies[b.Key] = b
		r.order = append(r.order, b.Key)
	}
	return r
}

var defaultBodies = []Body{
	{
		Key:         "mars",
		Name:        "Mars",
		TileURL:     "https://cartocdn-gusc.global.ssl.fastly.net/opmbuilder/api/v1/map/named/opm-mars-basemap-v0-2/all/{z}/{x}/{y}.png",
		Attribution: "OpenPlanetaryMap/CARTO | NASA/MOLA",
		MaxZoom:     5,
	},
	{
		Key:         "moon",
		Name:        "Moon",
		TileURL:     "https://trek.nasa.gov/tiles/Moon/EQ/LRO_WAC_Mosaic_Global_303ppd_v02/1.0.0/default/default028mm/{z}/{y}/{x}.jpg",
		Attribution: "NASA Moon Trek | LRO WAC",
		MaxZoom:     7,
	},
	{
		Key:         "mercury",
		Name:        "Mercury",
		TileURL:     "https://trek.nasa.gov/tiles/Mercury/EQ/Mercury_MESSENGER_MDIS_Basemap_BDR_Mosaic_Global_166m/1.0.0/default/default028mm/{z}/{y}/{x}.jpg",
		Attribution: "NASA Mercury Trek | MESSENGER MDIS",
		MaxZoom:     7,
	},
}

// Get returns the registry entry for a body key.
func (r *Registry) Get(key string) (Body, error) {
	b, ok := r.bodies[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Body{}, ErrUnknownBody
	}
	return b, nil
}

// Has reports whether a body key is registered.
func (r *Registry) Has(key string) bool {
	_, err := r.Get(key)
	return err == nil
}

// List returns all registered bodies in registration order.
func (r *Registry) List() []Body {
	out := make([]Body, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.bodies[k])
	}
	return out
}
