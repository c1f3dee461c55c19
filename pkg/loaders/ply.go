package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/log"
	"github.com/df07/go-photon-raytracer/pkg/material"
)

var logger = log.New("loaders")

// PLYData contains the triangle data loaded from a PLY file
type PLYData struct {
	Vertices  []core.Vec3 // Vertex positions (x, y, z)
	Faces     []int       // Triangle indices (3 per triangle)
	Normals   []core.Vec3 // Per-vertex normals (nx, ny, nz) - empty if not present
	TexCoords []core.Vec2 // Per-vertex texture coordinates (u, v) - empty if not present
}

// plyProperty represents a property definition in the PLY header
type plyProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// plyElement is one element block of the header (vertex, face, ...)
type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

// plyHeader represents the parsed header information from a PLY file
type plyHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Elements []plyElement
}

func (h plyHeader) element(name string) (plyElement, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return plyElement{}, false
}

// LoadPLY loads a PLY file and returns the raw vertex and face data
func LoadPLY(filename string) (*PLYData, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening PLY file")
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}

	logger.Debugf("loaded %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces)/3, time.Since(start))
	return data, nil
}

// ReadPLY parses an ASCII or binary PLY stream. Polygons are split into
// triangle fans.
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "parsing PLY header")
	}

	var values valueReader
	switch header.Format {
	case "ascii":
		values = &asciiReader{r: reader}
	case "binary_little_endian":
		values = &binaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format %q", header.Format)
	}

	vertexElement, ok := header.element("vertex")
	if !ok {
		return nil, errors.New("PLY file has no vertex element")
	}

	data := &PLYData{Vertices: make([]core.Vec3, 0, vertexElement.Count)}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, data)
		case "face":
			err = readFaces(values, element, data)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s element", element.Name)
		}
	}

	for _, idx := range data.Faces {
		if idx < 0 || idx >= len(data.Vertices) {
			return nil, errors.Errorf("face references vertex %d of %d", idx, len(data.Vertices))
		}
	}
	return data, nil
}

// parsePLYHeader reads the header up to and including end_header
func parsePLYHeader(r *bufio.Reader) (plyHeader, error) {
	var header plyHeader

	magic, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return header, errors.New("missing ply magic number")
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return header, errors.Wrap(err, "header ended before end_header")
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) < 3 {
				return header, errors.Errorf("invalid format line %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return header, errors.Errorf("invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return header, errors.Errorf("invalid element count %q", parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return header, errors.New("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return header, err
			}
			last := &header.Elements[len(header.Elements)-1]
			last.Props = append(last.Props, prop)
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		return plyProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if len(parts) == 2 && parts[0] != "list" {
		return plyProperty{Type: parts[0], Name: parts[1]}, nil
	}
	return plyProperty{}, errors.Errorf("invalid property definition %q", strings.Join(parts, " "))
}

func readVertices(values valueReader, element plyElement, data *PLYData) error {
	var hasNormals, hasTexCoords bool
	for _, prop := range element.Props {
		switch prop.Name {
		case "nx", "ny", "nz":
			hasNormals = true
		case "u", "s", "texture_u", "v", "t", "texture_v":
			hasTexCoords = true
		}
	}

	for i := 0; i < element.Count; i++ {
		var position, normal core.Vec3
		var uv core.Vec2
		for _, prop := range element.Props {
			if prop.IsList {
				if err := skipProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			value, err := values.read(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d property %s", i, prop.Name)
			}
			switch prop.Name {
			case "x":
				position.X = value
			case "y":
				position.Y = value
			case "z":
				position.Z = value
			case "nx":
				normal.X = value
			case "ny":
				normal.Y = value
			case "nz":
				normal.Z = value
			case "u", "s", "texture_u":
				uv.X = value
			case "v", "t", "texture_v":
				uv.Y = value
			}
		}

		data.Vertices = append(data.Vertices, position)
		if hasNormals {
			data.Normals = append(data.Normals, normal.Normalize())
		}
		if hasTexCoords {
			data.TexCoords = append(data.TexCoords, uv)
		}
	}
	return nil
}

func readFaces(values valueReader, element plyElement, data *PLYData) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return errors.Wrapf(err, "face %d vertex count", i)
			}
			if count < 3 {
				return errors.Errorf("face %d has %d vertices", i, int(count))
			}

			polygon := make([]int, int(count))
			for j := range polygon {
				idx, err := values.read(prop.Type)
				if err != nil {
					return errors.Wrapf(err, "face %d index %d", i, j)
				}
				polygon[j] = int(idx)
			}

			// Triangle fan around the first vertex
			for j := 1; j+1 < len(polygon); j++ {
				data.Faces = append(data.Faces, polygon[0], polygon[j], polygon[j+1])
			}
		}
	}
	return nil
}

func skipElement(values valueReader, element plyElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if err := skipProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipProperty reads and discards one property value or list
func skipProperty(values valueReader, prop plyProperty) error {
	if !prop.IsList {
		_, err := values.read(prop.Type)
		return err
	}

	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// valueReader reads successive scalar values of the body
type valueReader interface {
	read(dataType string) (float64, error)
}

// asciiReader reads whitespace separated values across lines
type asciiReader struct {
	r      *bufio.Reader
	fields []string
}

func (a *asciiReader) read(dataType string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return 0, errors.Wrap(err, "unexpected end of data")
		}
		a.fields = strings.Fields(line)
	}

	field := a.fields[0]
	a.fields = a.fields[1:]
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s value %q", dataType, field)
	}
	return value, nil
}

// binaryReader reads fixed size values in the given byte order
type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) read(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, errors.Errorf("unsupported data type %q", dataType)
	}
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		return 0, errors.Wrap(err, "unexpected end of data")
	}

	buf := b.buf[:size]
	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default: // double, float64
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

// typeSize returns the size in bytes of a PLY data type, or 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// NewPLYMesh builds a triangle mesh from loaded PLY data, carrying vertex
// normals and texture coordinates when the file has them
func NewPLYMesh(data *PLYData, name string, mat material.Material) (*geometry.MeshObject, error) {
	if len(data.Faces)%3 != 0 {
		return nil, errors.Errorf("mesh %q: face index count %d is not a multiple of 3", name, len(data.Faces))
	}
	hasNormals := len(data.Normals) == len(data.Vertices)
	hasTexCoords := len(data.TexCoords) == len(data.Vertices)

	mesh := geometry.NewMeshObject(name, mat)
	for i := 0; i < len(data.Faces); i += 3 {
		a, b, c := data.Faces[i], data.Faces[i+1], data.Faces[i+2]
		for _, idx := range [3]int{a, b, c} {
			if idx < 0 || idx >= len(data.Vertices) {
				return nil, errors.Errorf("mesh %q: face %d references vertex %d of %d", name, i/3, idx, len(data.Vertices))
			}
		}

		triangle := geometry.NewTriangle(data.Vertices[a], data.Vertices[b], data.Vertices[c])
		if hasNormals {
			triangle.SetVertexNormals(data.Normals[a], data.Normals[b], data.Normals[c])
		}
		if hasTexCoords {
			triangle.SetVertexUVs(data.TexCoords[a], data.TexCoords[b], data.TexCoords[c])
		}
		mesh.AddTriangle(triangle)
	}
	return mesh, nil
}
