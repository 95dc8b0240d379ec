package race

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// ErrAssetMissing is returned when a sprite file cannot be found.
var ErrAssetMissing = errors.New("race asset missing")

// Sprite file names inside the asset directory.
const (
	CarSprite      = "car.png"
	ObstacleSprite = "obstacle.png"
)

// Images holds the decoded sprites.
type Images struct {
	Car      image.Image
	Obstacle image.Image
}

// LoadImages decodes every sprite from dir. Any missing or unreadable file
// is an error: the game does not start without its art.
func LoadImages(dir string) (*Images, error) {
	car, err := loadPNG(filepath.Join(dir, CarSprite))
	if err != nil {
		return nil, err
	}
	obstacle, err := loadPNG(filepath.Join(dir, ObstacleSprite))
	if err != nil {
		return nil, err
	}
	return &Images{Car: car, Obstacle: obstacle}, nil
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
