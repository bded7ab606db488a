package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region yaml-loading

// LoadLibrary reads a persona library from a YAML file. Sections present in
// the file replace the built-in defaults wholesale; absent sections keep the
// defaults, so a file may override just the NPC roster or just one keyword
// table set.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona library: %w", err)
	}

	var loaded Library
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse persona library %s: %w", path, err)
	}

	lib := DefaultLibrary()
	if len(loaded.Archetypes) > 0 {
		lib.Archetypes = loaded.Archetypes
	}
	if len(loaded.Moods) > 0 {
		lib.Moods = loaded.Moods
	}
	if len(loaded.NPCs) > 0 {
		lib.NPCs = loaded.NPCs
	}

	if err := validate(lib); err != nil {
		return nil, fmt.Errorf("persona library %s: %w", path, err)
	}
	return lib, nil
}

func validate(lib *Library) error {
	if len(lib.Moods) == 0 {
		return fmt.Errorf("no moods defined")
	}
	moods := make(map[string]bool, len(lib.Moods))
	for _, m := range lib.Moods {
		if m.Name == "" {
			return fmt.Errorf("mood with empty name")
		}
		if m.MinTokens < 0 || m.MaxTokens < m.MinTokens {
			return fmt.Errorf("mood %q: bad token bounds [%d,%d]", m.Name, m.MinTokens, m.MaxTokens)
		}
		moods[m.Name] = true
	}
	for _, npc := range lib.NPCs {
		if npc.Name == "" {
			return fmt.Errorf("npc with empty name")
		}
		if len(npc.AllowedMoods) == 0 {
			return fmt.Errorf("npc %q: no allowed moods", npc.Name)
		}
		for _, m := range npc.AllowedMoods {
			if !moods[m] {
				return fmt.Errorf("npc %q: unknown mood %q", npc.Name, m)
			}
		}
	}
	return nil
}

// #endregion yaml-loading
