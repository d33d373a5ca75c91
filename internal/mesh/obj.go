package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// OBJStats — счётчики записанных записей OBJ
type OBJStats struct {
	Vertices int
	UVs      int
	Faces    int
}

// WriteOBJ записывает меш в формате Wavefront OBJ.
// Индексы вершин и UV в OBJ глобальны для файла, поэтому при записи
// нескольких мешей подряд передаётся накопленное смещение offset.
// Квады группируются по текстуре через usemtl.
func (b *Batch) WriteOBJ(w io.Writer, offset OBJStats) (OBJStats, error) {
	out := bufio.NewWriter(w)
	var stats OBJStats

	fmt.Fprintf(out, "o chunk_%d_%d_%d\n", b.Chunk.X, b.Chunk.Y, b.Chunk.Z)

	for _, q := range b.Quads {
		for _, v := range q.Vertices {
			fmt.Fprintf(out, "v %s %s %s\n", formatCoord(v.X), formatCoord(v.Y), formatCoord(v.Z))
			stats.Vertices++
		}
		for _, uv := range q.UV {
			fmt.Fprintf(out, "vt %s %s\n", formatCoord(uv.X), formatCoord(uv.Y))
			stats.UVs++
		}
	}

	// Порядок текстур — порядок первого появления
	var textures []string
	seen := make(map[string]bool)
	for _, q := range b.Quads {
		if !seen[q.Texture] {
			seen[q.Texture] = true
			textures = append(textures, q.Texture)
		}
	}

	for _, tex := range textures {
		fmt.Fprintln(out, "usemtl", tex)
		for i, q := range b.Quads {
			if q.Texture != tex {
				continue
			}
			fmt.Fprint(out, "f")
			for k := 0; k < 4; k++ {
				vi := offset.Vertices + i*4 + k + 1
				ti := offset.UVs + i*4 + k + 1
				fmt.Fprintf(out, " %d/%d", vi, ti)
			}
			fmt.Fprintln(out)
			stats.Faces++
		}
	}

	if err := out.Flush(); err != nil {
		return stats, err
	}

	stats.Vertices += offset.Vertices
	stats.UVs += offset.UVs
	stats.Faces += offset.Faces
	return stats, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
