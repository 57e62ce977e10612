// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation. Metrics sinks and journal stores are built this way.
//
// Example usage:
//
//	reg := factory.NewRegistry[journal.Store]()
//	reg.Register("sqlite", func(conf map[string]any) (journal.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return journal.NewSQLiteStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "journal.db"}})
package factory
