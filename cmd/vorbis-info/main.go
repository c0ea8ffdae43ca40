// vorbis-info is a tool which prints the header contents of Ogg/Vorbis
// files; the identification header fields and the setup header tables, and
// optionally a dump of the decoded floor curves.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/mewkiz/vorbis"
)

// flagFloors specifies if the decoded floor curves of the audio packets
// should be written to a dump file next to the input.
var flagFloors bool

// flagForce specifies if dump file overwriting should be forced, when a
// dump file of the same name already exists.
var flagForce bool

func init() {
	flag.BoolVar(&flagFloors, "floors", false, "Write decoded floor curves to FILE.floors.txt.")
	flag.BoolVar(&flagForce, "f", false, "Force overwrite of dump files.")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: vorbis-info [OPTION]... FILE...")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		if err := info(path); err != nil {
			log.Fatalln(err)
		}
	}
}

// info prints the header contents of the provided Ogg/Vorbis file.
func info(path string) error {
	stream, err := vorbis.Parse(path)
	if err != nil {
		return err
	}

	id := stream.ID
	fmt.Printf("%s: serial %08x\n", path, stream.Serial)
	fmt.Println("IDENTIFICATION HEADER")
	fmt.Println("  channels:", id.AudioChannels)
	fmt.Println("  sample rate:", id.SampleRate)
	fmt.Printf("  bitrate: max %d, nominal %d, min %d\n", id.BitrateMax, id.BitrateNominal, id.BitrateMin)
	fmt.Printf("  block sizes: %d, %d\n", 1<<id.Blocksize0, 1<<id.Blocksize1)

	setup := stream.Setup
	fmt.Println("SETUP HEADER")
	fmt.Println("  codebooks:", len(setup.Codebooks))
	for i, cb := range setup.Codebooks {
		fmt.Printf("    codebook #%d: dimensions %d, entries %d, lookup type %d\n",
			i, cb.Dimensions, cb.EntryCount(), cb.LookupType)
	}
	fmt.Println("  floors:", len(setup.Floors))
	for i, floor := range setup.Floors {
		switch fl := floor.Data.(type) {
		case *vorbis.Floor0:
			fmt.Printf("    floor #%d: type 0, order %d, rate %d\n", i, fl.Order, fl.Rate)
		case *vorbis.Floor1:
			fmt.Printf("    floor #%d: type 1, partitions %d, classes %d, X values %d\n",
				i, len(fl.PartitionClasses), len(fl.Classes), len(fl.Values))
		}
	}
	fmt.Println("  residues:", len(setup.Residues))
	for i, res := range setup.Residues {
		fmt.Printf("    residue #%d: type %d, range [%d, %d), partition size %d\n",
			i, res.Type, res.Begin, res.End, res.PartitionSize)
	}
	fmt.Println("  mappings:", len(setup.Mappings))
	fmt.Println("  modes:", len(setup.Modes))
	fmt.Println("  audio packets:", len(stream.Packets))

	if flagFloors {
		if err := dumpFloors(path, stream); err != nil {
			return err
		}
	}
	return nil
}

// dumpFloors writes the decoded floor curves of the audio packets of the
// stream to a dump file next to the input.
func dumpFloors(path string, stream *vorbis.Stream) error {
	dumpPath := pathutil.TrimExt(path) + ".floors.txt"
	if !flagForce {
		if osutil.Exists(dumpPath) {
			return fmt.Errorf("the file %q exists already", dumpPath)
		}
	}
	fw, err := os.Create(dumpPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	bw := bufio.NewWriter(fw)
	defer bw.Flush()
	for i, p := range stream.Packets {
		fmt.Fprintf(bw, "packet #%d: mode %d, block size %d, window [%d %d) [%d %d)\n",
			i, p.Mode, p.BlockSize, p.LeftStart, p.LeftEnd, p.RightStart, p.RightEnd)
		for ch, curve := range p.Floors {
			if curve.Unused {
				fmt.Fprintf(bw, "  channel %d: no floor\n", ch)
				continue
			}
			fmt.Fprintf(bw, "  channel %d:", ch)
			for j, y := range curve.FinalYs {
				if !curve.Used[j] {
					continue
				}
				fmt.Fprintf(bw, " %d", y)
			}
			fmt.Fprintln(bw)
		}
	}
	return nil
}
