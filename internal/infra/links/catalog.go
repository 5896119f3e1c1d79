// Package links serves the client-app download catalog: a JSON file
// mapping application name to per-OS download URLs, loaded once at
// startup.
package links

import (
	"encoding/json"
	"fmt"
	"os"

	"telegram-vpn-shop/internal/domain"
)

type Catalog struct {
	byApp map[string]map[string]string
}

// Load reads and parses the catalog file. A malformed file is a
// content fault and aborts startup.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read link catalog: %w", err)
	}
	return parse(b)
}

func parse(b []byte) (*Catalog, error) {
	var byApp map[string]map[string]string
	if err := json.Unmarshal(b, &byApp); err != nil {
		return nil, fmt.Errorf("%w: link catalog: %v", domain.ErrContent, err)
	}
	return &Catalog{byApp: byApp}, nil
}

// Resolve returns the download URL for (app, os); a missing entry is a
// content fault.
func (c *Catalog) Resolve(app, osName string) (string, error) {
	perOS, ok := c.byApp[app]
	if !ok {
		return "", fmt.Errorf("%w: app %q", domain.ErrContent, app)
	}
	url, ok := perOS[osName]
	if !ok || url == "" {
		return "", fmt.Errorf("%w: app %q os %q", domain.ErrContent, app, osName)
	}
	return url, nil
}

// Has reports whether the catalog lists app.
func (c *Catalog) Has(app string) bool {
	_, ok := c.byApp[app]
	return ok
}

// Apps lists the catalog's application names; order is unspecified.
func (c *Catalog) Apps() []string {
	out := make([]string, 0, len(c.byApp))
	for app := range c.byApp {
		out = append(out, app)
	}
	return out
}
