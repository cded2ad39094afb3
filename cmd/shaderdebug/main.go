// Shader debug tool - renders a particle shader over a block of cells to a PNG
// file for inspection.
//
// Usage: go run ./cmd/shaderdebug -shader shaders/noise.fs -color "#d3b083" -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/config"
)

func main() {
	shaderPath := flag.String("shader", "shaders/noise.fs", "Path to fragment shader")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	hex := flag.String("color", "#d3b083", "Particle color fed through the shader")
	cell := flag.Float64("cell", 15, "Cell size in pixels (pixel scale uniform)")
	t := flag.Float64("time", 0, "Value of the time uniform")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	flag.Parse()

	col, err := config.ParseColor(*hex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid color: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load defaults: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	shader := rl.LoadShader("", *shaderPath)
	if shader.ID == 0 {
		fmt.Fprintf(os.Stderr, "Failed to load shader: %s\n", *shaderPath)
		os.Exit(1)
	}
	defer rl.UnloadShader(shader)

	// The same uniforms the layer renderer feeds every particle shader.
	scaleLoc := rl.GetShaderLocation(shader, cfg.Shaders.PixelScaleUniform)
	timeLoc := rl.GetShaderLocation(shader, cfg.Shaders.TimeUniform)
	rl.SetShaderValue(shader, scaleLoc, []float32{float32(*cell), float32(*cell)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(shader, timeLoc, []float32{float32(*t)}, rl.ShaderUniformFloat)

	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Left half runs through the shader, right half shows the flat color.
	half := int32(*width) / 2
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(shader)
	rl.DrawRectangle(0, 0, half, int32(*height), col)
	rl.EndShaderMode()
	rl.DrawRectangle(half, 0, int32(*width)-half, int32(*height), col)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Shader rendered to: %s (%dx%d)\n", *outPath, *width, *height)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
