package convert

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// bytesPerSample is the size of one decoded stereo 16-bit sample frame
const bytesPerSample = 4

// MP3Duration decodes the header of an mp3 file and returns its length in seconds
func MP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode mp3: %w", err)
	}

	length := d.Length()
	if length <= 0 || d.SampleRate() <= 0 {
		return 0, fmt.Errorf("mp3 length unknown")
	}
	return float64(length) / bytesPerSample / float64(d.SampleRate()), nil
}
