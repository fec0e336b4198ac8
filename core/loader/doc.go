// Package loader registers HTTP features and mounts the enabled ones.
//
// Each feature implements Feature: a name, an enabled switch and a Load
// hook that registers its routes on the router it is handed.
//
//	mgr := loader.NewManager()
//	mgr.Register(catalog.NewFeature(svc))
//	if err := mgr.LoadAll(app); err != nil {
//	    return err
//	}
package loader
