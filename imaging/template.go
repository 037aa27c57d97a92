package imaging

import (
	"fmt"
	"strings"
)

// DefaultNameTemplate matches PySceneDetect's default image_name_template.
const DefaultNameTemplate = "$VIDEO_NAME-Scene-$SCENE_NUMBER-$IMAGE_NUMBER"

// FilenameParams holds the substitution values for a single extracted
// image.
type FilenameParams struct {
	VideoName   string
	SceneNumber int // 1-based
	ImageNumber int // 1-based
	FrameNumber int
	// SceneDigits/ImageDigits fix the zero-padded width of SCENE_NUMBER/
	// IMAGE_NUMBER, mirroring save_images's scene_num_format/
	// image_num_format (derived from log10 of the total scene/image
	// counts, minimum 3 digits for scenes).
	SceneDigits int
	ImageDigits int
}

// RenderFilename substitutes $VIDEO_NAME, $SCENE_NUMBER, $IMAGE_NUMBER,
// and $FRAME_NUMBER into tmpl and appends "."+ext.
func RenderFilename(tmpl string, p FilenameParams, ext string) string {
	r := strings.NewReplacer(
		"$VIDEO_NAME", p.VideoName,
		"$SCENE_NUMBER", fmt.Sprintf("%0*d", p.SceneDigits, p.SceneNumber),
		"$IMAGE_NUMBER", fmt.Sprintf("%0*d", p.ImageDigits, p.ImageNumber),
		"$FRAME_NUMBER", fmt.Sprintf("%d", p.FrameNumber),
	)
	return r.Replace(tmpl) + "." + ext
}

// sceneDigits mirrors save_images's scene_num_format width: at least 3
// digits, or enough to fit numScenes.
func sceneDigits(numScenes int) int {
	d := digitsFor(numScenes)
	if d < 3 {
		return 3
	}
	return d
}

// imageDigits mirrors save_images's image_num_format width.
func imageDigits(numImages int) int {
	return digitsFor(numImages) + 1
}

func digitsFor(n int) int {
	if n < 1 {
		n = 1
	}
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
