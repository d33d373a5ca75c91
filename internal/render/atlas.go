package render

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// FaceRole — роль грани при выборе полосы атласа
type FaceRole int

const (
	RoleTop FaceRole = iota
	RoleSide
	RoleBottom
)

// atlasStrips — количество горизонтальных полос в изображении блока
const atlasStrips = 4

// String возвращает строковое представление роли
func (r FaceRole) String() string {
	switch r {
	case RoleTop:
		return "top"
	case RoleSide:
		return "side"
	case RoleBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// StripUV возвращает UV-прямоугольник полосы для роли грани.
// Изображение делится на четыре полосы по U: верх, бок, низ, свободная.
// Углы идут в порядке (u0,0), (u1,0), (u1,1), (u0,1).
func StripUV(role FaceRole) [4]vec.Vec2Float {
	u0 := float64(role) / atlasStrips
	u1 := float64(role+1) / atlasStrips
	return [4]vec.Vec2Float{
		{X: u0, Y: 0},
		{X: u1, Y: 0},
		{X: u1, Y: 1},
		{X: u0, Y: 1},
	}
}

// UVSource выдаёт UV-координаты для грани блока
type UVSource interface {
	UV(id block.BlockID, role FaceRole) [4]vec.Vec2Float
}

// StripLayout — раскладка атласа по полосам, одинаковая для всех блоков
type StripLayout struct{}

// UV реализует UVSource
func (StripLayout) UV(_ block.BlockID, role FaceRole) [4]vec.Vec2Float {
	return StripUV(role)
}

// TextureHandle — загруженная текстура блока
type TextureHandle struct {
	Block  block.BlockID
	Path   string
	Width  int
	Height int
}

// Loader загружает текстуру по имени файла
type Loader interface {
	Load(name string) (TextureHandle, error)
}

// FileLoader читает PNG-файлы из каталога
type FileLoader struct {
	Dir string
}

// Load читает заголовок PNG и возвращает размеры текстуры
func (l FileLoader) Load(name string) (TextureHandle, error) {
	path := filepath.Join(l.Dir, name)

	f, err := os.Open(path)
	if err != nil {
		return TextureHandle{}, fmt.Errorf("ошибка открытия текстуры %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return TextureHandle{}, fmt.Errorf("ошибка чтения текстуры %s: %w", path, err)
	}

	return TextureHandle{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}

// Atlas разрешает тип блока в текстуру.
// Текстуры загружаются лениво и кэшируются по типу блока.
// Атлас принадлежит слою рендеринга и передаётся потребителям явно.
type Atlas struct {
	blocks *block.Registry
	loader Loader
	layout StripLayout

	mu    sync.Mutex
	cache map[block.BlockID]TextureHandle
}

// NewAtlas создаёт атлас поверх реестра блоков
func NewAtlas(blocks *block.Registry, loader Loader) *Atlas {
	return &Atlas{
		blocks: blocks,
		loader: loader,
		cache:  make(map[block.BlockID]TextureHandle),
	}
}

// Resolve возвращает текстуру блока и UV-полосу для роли грани
func (a *Atlas) Resolve(id block.BlockID, role FaceRole) (TextureHandle, [4]vec.Vec2Float, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if h, ok := a.cache[id]; ok {
		return h, a.layout.UV(id, role), nil
	}

	props, err := a.blocks.Properties(id)
	if err != nil {
		return TextureHandle{}, [4]vec.Vec2Float{}, err
	}

	h, err := a.loader.Load(props.Texture)
	if err != nil {
		return TextureHandle{}, [4]vec.Vec2Float{}, err
	}
	h.Block = id
	a.cache[id] = h

	return h, a.layout.UV(id, role), nil
}

// UV реализует UVSource
func (a *Atlas) UV(id block.BlockID, role FaceRole) [4]vec.Vec2Float {
	return a.layout.UV(id, role)
}

// Cached возвращает количество загруженных текстур
func (a *Atlas) Cached() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}
