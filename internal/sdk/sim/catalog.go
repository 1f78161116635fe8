package sim

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/btree"
	"gopkg.in/yaml.v3"

	"github.com/arko-chat/geobridge/internal/sdk"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Chain struct {
	Slug     string            `yaml:"slug"`
	Name     string            `yaml:"name"`
	Metadata map[string]string `yaml:"metadata"`
}

type Place struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Categories []string       `yaml:"categories"`
	Chain      *Chain         `yaml:"chain"`
	Group      string         `yaml:"group"`
	Metadata   map[string]any `yaml:"metadata"`
	Location   sdk.Coordinate `yaml:"location"`
}

func (p Place) JSON() map[string]any {
	out := map[string]any{
		"_id":        p.ID,
		"name":       p.Name,
		"categories": p.Categories,
		"location":   point(p.Location),
	}
	if p.Chain != nil {
		out["chain"] = map[string]any{"slug": p.Chain.Slug, "name": p.Chain.Name}
	}
	if p.Group != "" {
		out["group"] = p.Group
	}
	if len(p.Metadata) > 0 {
		out["metadata"] = p.Metadata
	}
	return out
}

type Geofence struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Tag         string         `yaml:"tag"`
	ExternalID  string         `yaml:"externalId"`
	Radius      float64        `yaml:"radius"`
	Metadata    map[string]any `yaml:"metadata"`
	Center      sdk.Coordinate `yaml:"center"`
}

func (g Geofence) JSON() map[string]any {
	out := map[string]any{
		"_id":            g.ID,
		"description":    g.Description,
		"type":           "circle",
		"geometryRadius": g.Radius,
		"geometryCenter": point(g.Center),
	}
	if g.Tag != "" {
		out["tag"] = g.Tag
	}
	if g.ExternalID != "" {
		out["externalId"] = g.ExternalID
	}
	if len(g.Metadata) > 0 {
		out["metadata"] = g.Metadata
	}
	return out
}

func (g Geofence) Contains(c sdk.Coordinate) bool {
	return distance(g.Center, c) <= g.Radius
}

// Point is a tagged location without a geometry radius.
type Point struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Tag         string         `yaml:"tag"`
	ExternalID  string         `yaml:"externalId"`
	Metadata    map[string]any `yaml:"metadata"`
	Location    sdk.Coordinate `yaml:"location"`
}

func (p Point) JSON() map[string]any {
	out := map[string]any{
		"_id":         p.ID,
		"description": p.Description,
		"location":    point(p.Location),
	}
	if p.Tag != "" {
		out["tag"] = p.Tag
	}
	if p.ExternalID != "" {
		out["externalId"] = p.ExternalID
	}
	if len(p.Metadata) > 0 {
		out["metadata"] = p.Metadata
	}
	return out
}

type Address struct {
	FormattedAddress string         `yaml:"formattedAddress"`
	AddressLabel     string         `yaml:"addressLabel"`
	Number           string         `yaml:"number"`
	Street           string         `yaml:"street"`
	City             string         `yaml:"city"`
	State            string         `yaml:"state"`
	StateCode        string         `yaml:"stateCode"`
	PostalCode       string         `yaml:"postalCode"`
	Country          string         `yaml:"country"`
	CountryCode      string         `yaml:"countryCode"`
	Layer            string         `yaml:"layer"`
	Location         sdk.Coordinate `yaml:"location"`
}

func (a Address) JSON() map[string]any {
	out := map[string]any{
		"latitude":         a.Location.Latitude,
		"longitude":        a.Location.Longitude,
		"formattedAddress": a.FormattedAddress,
		"country":          a.Country,
		"countryCode":      a.CountryCode,
		"layer":            a.Layer,
	}
	for k, v := range map[string]string{
		"addressLabel": a.AddressLabel,
		"number":       a.Number,
		"street":       a.Street,
		"city":         a.City,
		"state":        a.State,
		"stateCode":    a.StateCode,
		"postalCode":   a.PostalCode,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type IPInfo struct {
	IP      string  `yaml:"ip"`
	Proxy   bool    `yaml:"proxy"`
	Address Address `yaml:"address"`
}

// Catalog is the simulator's world: the places, geofences, points and
// addresses searches run against.
type Catalog struct {
	Origin    sdk.Coordinate `yaml:"origin"`
	Places    []Place        `yaml:"places"`
	Geofences []Geofence     `yaml:"geofences"`
	Points    []Point        `yaml:"points"`
	Addresses []Address      `yaml:"addresses"`
	IP        IPInfo         `yaml:"ip"`

	fences *btree.BTreeG[Geofence]
}

func byID(a, b Geofence) bool {
	return a.ID < b.ID
}

func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("sim: built-in catalog: %v", err))
	}
	return c
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sim: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("sim: parse catalog: %w", err)
	}

	c.fences = btree.NewBTreeG(byID)
	for i, g := range c.Geofences {
		if g.ID == "" {
			return nil, fmt.Errorf("sim: geofence %d has no id", i)
		}
		if g.Radius <= 0 {
			return nil, fmt.Errorf("sim: geofence %s: radius must be positive", g.ID)
		}
		if _, dup := c.fences.Set(g); dup {
			return nil, fmt.Errorf("sim: duplicate geofence id %s", g.ID)
		}
	}

	seen := make(map[string]bool, len(c.Points))
	for i, p := range c.Points {
		if p.ID == "" {
			return nil, fmt.Errorf("sim: point %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("sim: duplicate point id %s", p.ID)
		}
		seen[p.ID] = true
	}
	return &c, nil
}

func (c *Catalog) Geofence(id string) (Geofence, bool) {
	return c.fences.Get(Geofence{ID: id})
}

// EachGeofence visits geofences in id order until fn returns false.
func (c *Catalog) EachGeofence(fn func(Geofence) bool) {
	c.fences.Scan(fn)
}

// Containing returns the geofences whose circle holds c, in id order.
func (c *Catalog) Containing(at sdk.Coordinate) []Geofence {
	var out []Geofence
	c.fences.Scan(func(g Geofence) bool {
		if g.Contains(at) {
			out = append(out, g)
		}
		return true
	})
	return out
}

// NearestAddress returns the closest address within maxDist meters.
func (c *Catalog) NearestAddress(at sdk.Coordinate, maxDist float64) (Address, bool) {
	var best Address
	found, bestD := false, maxDist
	for _, a := range c.Addresses {
		if d := distance(a.Location, at); d <= bestD {
			best, bestD, found = a, d, true
		}
	}
	return best, found
}

func (c *Catalog) MatchAddresses(query string) []Address {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Address
	for _, a := range c.Addresses {
		if strings.Contains(strings.ToLower(a.FormattedAddress), q) ||
			strings.Contains(strings.ToLower(a.AddressLabel), q) {
			out = append(out, a)
		}
	}
	return out
}

func point(c sdk.Coordinate) map[string]any {
	return map[string]any{
		"type":        "Point",
		"coordinates": []float64{c.Longitude, c.Latitude},
	}
}
