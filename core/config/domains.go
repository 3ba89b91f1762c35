package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DomainDocument is the desired state declared for one email domain.
// Account entries are kept as raw maps: the entity models own the field
// schemas and validate during load.
type DomainDocument struct {
	// Accounts maps mailbox local-parts to their declared fields,
	// including the orchestrator-handled "aliases" and "spam" sections.
	Accounts map[string]map[string]any `yaml:"accounts"`
	// Spam is the domain-level spam section: settings plus ACLs.
	Spam map[string]any `yaml:"spam"`
}

// LoadDomain reads and parses the desired-state document for one domain.
func LoadDomain(dir, domain string) (*DomainDocument, error) {
	path := filepath.Join(dir, domain+".yml")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain config %s: %w", path, err)
	}

	var doc DomainDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse domain config %s: %w", path, err)
	}

	return &doc, nil
}

// DiscoverDomains lists the domains that have a desired-state document in
// the config directory, sorted for stable processing order.
func DiscoverDomains(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config dir %s: %w", dir, err)
	}

	var domains []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yml") {
			continue
		}
		domains = append(domains, strings.TrimSuffix(name, ".yml"))
	}

	sort.Strings(domains)
	return domains, nil
}
