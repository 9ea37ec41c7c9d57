package config

import "fmt"

// EngineVersion is the config schema version this build understands.
// Scene and render documents declare a "version" key; a mismatch is
// reported as a configuration error rather than silently misinterpreted,
// per spec.md section 6's version-mismatch error kind.
const EngineVersion = "1"

// checkVersion validates a document's declared version field against
// EngineVersion, defaulting to EngineVersion when the field is absent (for
// hand-written documents that predate the field).
func checkVersion(doc Node) error {
	v, ok := doc.Field("version")
	if !ok {
		return nil
	}
	s, err := v.String()
	if err != nil {
		return fmt.Errorf("config: version field: %w", err)
	}
	if s != EngineVersion {
		return fmt.Errorf("config: version mismatch: document declares %q, engine is %q", s, EngineVersion)
	}
	return nil
}
