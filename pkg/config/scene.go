package config

import (
	"fmt"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/loaders"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

// DecodeScene builds a scene.Scene from a parsed scene document. width and
// height size any sensor entries declared without an explicit resolution
// (normally taken from the paired render document, per spec.md section 6's
// separate scene/render documents).
func DecodeScene(doc Node, width, height int) (*scene.Scene, error) {
	if err := checkVersion(doc); err != nil {
		return nil, err
	}

	accelNode, _ := doc.Field("accel")
	kind, err := decodeAccelKind(accelNode.StringOr("bvh"))
	if err != nil {
		return nil, err
	}

	materials := map[string]material.BSDF{}
	if matsNode, ok := doc.Field("materials"); ok {
		if matsNode.Kind != KindMap {
			return nil, fmt.Errorf("config: materials must be a map")
		}
		for name, spec := range matsNode.Map {
			bsdf, err := decodeMaterial(spec)
			if err != nil {
				return nil, fmt.Errorf("config: material %q: %w", name, err)
			}
			materials[name] = bsdf
		}
	}

	primsNode, ok := doc.Field("primitives")
	if !ok || primsNode.Kind != KindSequence {
		return nil, fmt.Errorf("config: scene document requires a \"primitives\" sequence")
	}

	meshCache := map[string]*geometry.TriangleMesh{}
	var primitives []scene.Primitive
	sensorIndex := -1
	nextID := 0

	for entryIdx, entry := range primsNode.Sequence {
		switch {
		case entry.Has("mesh"):
			meshNode, _ := entry.Field("mesh")
			path, err := meshNode.String()
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
			}
			mesh, ok := meshCache[path]
			if !ok {
				mesh, err = loaders.LoadMesh(path)
				if err != nil {
					return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
				}
				meshCache[path] = mesh
			}

			transform, err := decodeTransform(entry)
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
			}

			var bsdf material.BSDF
			if matName, ok := entry.Field("material"); ok {
				name, err := matName.String()
				if err != nil {
					return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
				}
				bsdf, ok = materials[name]
				if !ok {
					return nil, fmt.Errorf("config: primitives[%d]: unknown material %q", entryIdx, name)
				}
			}

			var emit *emitterSpec
			if emitterNode, ok := entry.Field("emitter"); ok {
				emit, err = decodeAreaEmitterSpec(emitterNode)
				if err != nil {
					return nil, fmt.Errorf("config: primitives[%d]: emitter: %w", entryIdx, err)
				}
			}

			faces := buildMeshPrimitives(mesh, transform, bsdf, emit, &nextID)
			primitives = append(primitives, faces...)

		case entry.Has("sensor"):
			if sensorIndex >= 0 {
				return nil, fmt.Errorf("config: primitives[%d]: a scene may declare only one sensor", entryIdx)
			}
			sensorNode, _ := entry.Field("sensor")
			sensor, err := decodeSensor(sensorNode, width, height)
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: sensor: %w", entryIdx, err)
			}
			transform, err := decodeTransform(entry)
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
			}
			sensorIndex = len(primitives)
			primitives = append(primitives, scene.Primitive{ID: nextID, Transform: transform, Sensor: sensor})
			nextID++

		case entry.Has("light"):
			lightNode, _ := entry.Field("light")
			emitter, err := decodeNonMeshLight(lightNode)
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: light: %w", entryIdx, err)
			}
			transform, err := decodeTransform(entry)
			if err != nil {
				return nil, fmt.Errorf("config: primitives[%d]: %w", entryIdx, err)
			}
			primitives = append(primitives, scene.Primitive{ID: nextID, Transform: transform, Emitter: emitter})
			nextID++

		default:
			return nil, fmt.Errorf("config: primitives[%d]: entry must declare \"mesh\", \"sensor\" or \"light\"", entryIdx)
		}
	}

	if sensorIndex < 0 {
		return nil, fmt.Errorf("config: scene document declares no sensor")
	}

	sc, err := scene.Build(primitives, sensorIndex, kind)
	if err != nil {
		return nil, err
	}
	patchInfiniteLightBounds(sc)
	return sc, nil
}

// patchInfiniteLightBounds fixes up directional/environment emitters'
// SphereBound field, which decodeNonMeshLight can only set to a
// placeholder since the true scene bound isn't known until every
// primitive has been collected and scene.Build has computed it.
func patchInfiniteLightBounds(sc *scene.Scene) {
	for i := range sc.Primitives {
		switch e := sc.Primitives[i].Emitter.(type) {
		case *lights.DirectionalLight:
			e.SceneBound = sc.SphereBound
		case *lights.EnvironmentLight:
			e.SceneBound = sc.SphereBound
		}
	}
}
