package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
)

// LoadMesh parses a Wavefront OBJ file into a geometry.TriangleMesh.
// Replaces the teacher's PLY/PBRT mesh parsers (dropped entirely — neither
// format appears anywhere else in the example pack, and OBJ is the one
// mesh format every 3D tool in the ecosystem can export, so config-driven
// scene documents reference it directly rather than via a plugin). Faces
// with more than 3 vertices are triangle-fanned from the first vertex.
func LoadMesh(filename string) (*geometry.TriangleMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaders: open mesh: %w", err)
	}
	defer file.Close()

	var positions, normals []core.Vec3
	var uvs []core.Vec2
	var indices []int32
	hasNormals, hasUVs := false, false

	type vkey struct{ p, n, t int }
	cache := map[vkey]int32{}
	var outPositions, outNormals []core.Vec3
	var outUVs []core.Vec2

	resolve := func(tok string) (int32, error) {
		parts := strings.Split(tok, "/")
		pi, err := objIndex(parts[0], len(positions))
		if err != nil {
			return 0, err
		}
		ni, ti := -1, -1
		if len(parts) > 1 && parts[1] != "" {
			v, err := objIndex(parts[1], len(uvs))
			if err != nil {
				return 0, err
			}
			ti = v
		}
		if len(parts) > 2 && parts[2] != "" {
			v, err := objIndex(parts[2], len(normals))
			if err != nil {
				return 0, err
			}
			ni = v
		}
		key := vkey{pi, ni, ti}
		if idx, ok := cache[key]; ok {
			return idx, nil
		}
		idx := int32(len(outPositions))
		outPositions = append(outPositions, positions[pi])
		if ni >= 0 {
			outNormals = append(outNormals, normals[ni])
			hasNormals = true
		} else {
			outNormals = append(outNormals, core.Vec3{})
		}
		if ti >= 0 {
			outUVs = append(outUVs, uvs[ti])
			hasUVs = true
		} else {
			outUVs = append(outUVs, core.Vec2{})
		}
		cache[key] = idx
		return idx, nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, err
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, err
			}
			normals = append(normals, n)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("loaders: malformed vt line %q", line)
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, err
			}
			uvs = append(uvs, core.NewVec2(u, v))
		case "f":
			verts := fields[1:]
			if len(verts) < 3 {
				return nil, fmt.Errorf("loaders: face with fewer than 3 vertices: %q", line)
			}
			first, err := resolve(verts[0])
			if err != nil {
				return nil, err
			}
			prev, err := resolve(verts[1])
			if err != nil {
				return nil, err
			}
			for i := 2; i < len(verts); i++ {
				cur, err := resolve(verts[i])
				if err != nil {
					return nil, err
				}
				indices = append(indices, first, prev, cur)
				prev = cur
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loaders: read mesh: %w", err)
	}

	var meshNormals []core.Vec3
	if hasNormals {
		meshNormals = outNormals
	}
	var meshUVs []core.Vec2
	if hasUVs {
		meshUVs = outUVs
	}
	return geometry.NewTriangleMesh(outPositions, meshNormals, meshUVs, indices), nil
}

func objIndex(tok string, count int) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("loaders: bad index %q: %w", tok, err)
	}
	if n > 0 {
		return n - 1, nil
	}
	return count + n, nil // negative indices count back from the current list end
}

func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 3 {
		return core.Vec3{}, fmt.Errorf("loaders: expected 3 components, got %d", len(fields))
	}
	var v [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return core.Vec3{}, err
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}
