// Command flexdemo exercises the flexbatch pipeline end to end: it packs a
// few generated sprites into a texture atlas, queues a mix of opaque and
// translucent polygons on a sorter, and drains them through a batch,
// reporting how many GPU submissions the frame would cost.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"math/rand"

	"github.com/gogpu/flexbatch"
	"github.com/gogpu/flexbatch/render"
	"github.com/gogpu/flexbatch/texture"
)

// statsQueue counts submissions instead of talking to a GPU.
type statsQueue struct {
	submits  int
	vertices int
	indices  int
}

func (q *statsQueue) Submit(vertices []float32, indices []uint16, _ []flexbatch.TextureID) error {
	q.submits++
	q.vertices += len(vertices)
	q.indices += len(indices)
	return nil
}

func main() {
	var (
		sprites = flag.Int("sprites", 500, "sprites per frame")
		sorted  = flag.Bool("sorted", true, "route sprites through the sorter")
		seed    = flag.Int64("seed", 1, "random seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	// Pack a handful of solid tiles into one atlas page.
	atlas := texture.NewAtlas(texture.DefaultConfig())
	uploader := &countingUploader{}
	var placements []texture.Placement
	for _, c := range []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	} {
		p, err := atlas.Add(solidTile(32, 32, c))
		if err != nil {
			log.Fatalf("atlas add: %v", err)
		}
		placements = append(placements, p)
	}
	if err := atlas.Upload(uploader); err != nil {
		log.Fatalf("atlas upload: %v", err)
	}

	regions := make([]*flexbatch.PolygonRegion, len(placements))
	quad := []float32{0, 0, 32, 0, 32, 32, 0, 32}
	tris := []uint16{0, 1, 2, 2, 3, 0}
	for i, p := range placements {
		r, err := atlas.Region(p)
		if err != nil {
			log.Fatalf("atlas region: %v", err)
		}
		regions[i] = flexbatch.NewPolygonRegion(&r, quad, tris)
	}

	queue := &statsQueue{}
	batch, err := render.NewBatch[*flexbatch.Poly3D](queue, render.DefaultConfig())
	if err != nil {
		log.Fatalf("create batch: %v", err)
	}

	sorter := flexbatch.NewBatchableSorter[*flexbatch.Poly3D](flexbatch.V3(0, 0, 50))
	pool := flexbatch.NewPool(flexbatch.NewPoly3D)
	pool.Warmup(*sprites)

	frame := make([]*flexbatch.Poly3D, 0, *sprites)
	for i := 0; i < *sprites; i++ {
		p := pool.Get()
		p.SetRegion(regions[rng.Intn(len(regions))])
		p.SetPosition3(rng.Float32()*800, rng.Float32()*600, rng.Float32()*100)
		p.SetOpaque(rng.Intn(2) == 0)
		frame = append(frame, p)
		if *sorted {
			sorter.Add(p)
		}
	}

	if err := batch.Begin(); err != nil {
		log.Fatalf("begin: %v", err)
	}
	if *sorted {
		if err := sorter.Flush(batch); err != nil {
			log.Fatalf("sorter flush: %v", err)
		}
	} else {
		for _, p := range frame {
			if err := batch.Draw(p); err != nil {
				log.Fatalf("draw: %v", err)
			}
		}
	}
	if err := batch.End(); err != nil {
		log.Fatalf("end: %v", err)
	}

	for _, p := range frame {
		pool.Put(p)
	}

	log.Printf("%d sprites, sorted=%v: %d submissions, %d vertex floats, %d indices",
		*sprites, *sorted, queue.submits, queue.vertices, queue.indices)
}

// countingUploader mints handles without a GPU.
type countingUploader struct {
	next uint64
}

func (u *countingUploader) UploadRGBA(_, _ int, _ []byte) (flexbatch.TextureID, error) {
	u.next++
	return flexbatch.TextureID(u.next), nil
}

func solidTile(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
