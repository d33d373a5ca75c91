package mesh

import (
	"github.com/annel0/voxelworld/internal/render"
	"github.com/annel0/voxelworld/internal/vec"
)

// Face — одна из шести граней блока
type Face int

const (
	FaceTop    Face = iota // +Y
	FaceBottom             // -Y
	FaceLeft               // -X
	FaceRight              // +X
	FaceFront              // +Z
	FaceBack               // -Z
)

// Faces перечисляет грани в порядке эмиссии
var Faces = [6]Face{FaceTop, FaceBottom, FaceLeft, FaceRight, FaceFront, FaceBack}

// corner выбирает координату угла блока: false — нижний угол, true — верхний
type corner struct{ x, y, z bool }

type faceInfo struct {
	name    string
	normal  vec.Vec3
	role    render.FaceRole
	corners [4]corner
}

// Углы перечислены против часовой стрелки, если смотреть на грань снаружи
var faceTable = [6]faceInfo{
	FaceTop: {
		name: "top", normal: vec.Vec3{Y: 1}, role: render.RoleTop,
		corners: [4]corner{{false, true, true}, {true, true, true}, {true, true, false}, {false, true, false}},
	},
	FaceBottom: {
		name: "bottom", normal: vec.Vec3{Y: -1}, role: render.RoleBottom,
		corners: [4]corner{{false, false, false}, {true, false, false}, {true, false, true}, {false, false, true}},
	},
	FaceLeft: {
		name: "left", normal: vec.Vec3{X: -1}, role: render.RoleSide,
		corners: [4]corner{{false, false, false}, {false, false, true}, {false, true, true}, {false, true, false}},
	},
	FaceRight: {
		name: "right", normal: vec.Vec3{X: 1}, role: render.RoleSide,
		corners: [4]corner{{true, false, true}, {true, false, false}, {true, true, false}, {true, true, true}},
	},
	FaceFront: {
		name: "front", normal: vec.Vec3{Z: 1}, role: render.RoleSide,
		corners: [4]corner{{false, false, true}, {true, false, true}, {true, true, true}, {false, true, true}},
	},
	FaceBack: {
		name: "back", normal: vec.Vec3{Z: -1}, role: render.RoleSide,
		corners: [4]corner{{true, false, false}, {false, false, false}, {false, true, false}, {true, true, false}},
	},
}

// String возвращает имя грани
func (f Face) String() string {
	if f < 0 || int(f) >= len(faceTable) {
		return "unknown"
	}
	return faceTable[f].name
}

// Normal возвращает единичный вектор направления грани
func (f Face) Normal() vec.Vec3 {
	return faceTable[f].normal
}

// Role возвращает роль грани для выбора полосы атласа
func (f Face) Role() render.FaceRole {
	return faceTable[f].role
}

// Vertices возвращает углы грани блока с нижним углом low
func (f Face) Vertices(low vec.Vec3) [4]vec.Vec3Float {
	var out [4]vec.Vec3Float
	for i, c := range faceTable[f].corners {
		p := low
		if c.x {
			p.X++
		}
		if c.y {
			p.Y++
		}
		if c.z {
			p.Z++
		}
		out[i] = p.ToFloat()
	}
	return out
}
