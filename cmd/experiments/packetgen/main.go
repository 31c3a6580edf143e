// Command packetgen replays a demo scenario as F1 UDP datagrams, for testing
// the live listener without the game.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"apexgo/pkg/layout"
	"apexgo/pkg/packet"
	"apexgo/pkg/sim"
	"apexgo/pkg/sim/demo"
)

type generator struct {
	lay     *layout.Layout
	vehicle int
	session uint64
	frame   uint32
	physics *demo.Physics
}

// datagrams encodes the plan at elapsed as one datagram per packet type.
func (g *generator) datagrams(elapsed time.Duration) [][]byte {
	f := demo.At(elapsed)
	d := g.physics.Step(f.Speed)
	g.frame++

	hdr := packet.Header{
		PacketVersion:   1,
		SessionUID:      g.session,
		SessionTime:     float32(elapsed.Seconds()),
		FrameIdentifier: g.frame,
		PlayerCarIndex:  uint8(g.vehicle),
	}
	drs := uint8(0)
	if d.Speed > 290 {
		drs = 1
	}

	out := [][]byte{
		g.build(layout.PacketCarTelemetry, hdr, func(b *packet.Builder) {
			b.Telemetry(g.vehicle, packet.TelemetryRecord{
				Speed:            d.Speed,
				Gear:             d.Gear,
				EngineRPM:        d.RPM,
				DRS:              drs,
				RevLightsPercent: d.RevLights,
				Throttle:         1,
			})
		}),
		g.build(layout.PacketLapData, hdr, func(b *packet.Builder) {
			b.Lap(g.vehicle, packet.LapRecord{
				LastLapTimeMS:    f.LastLapMS,
				CurrentLapTimeMS: f.CurrentLapMS,
				CarPosition:      f.Position,
				CurrentLapNum:    f.Lap,
				PitStatus:        uint8(f.PitStatus),
				ResultStatus:     uint8(f.ResultStatus),
			})
		}),
		g.build(layout.PacketCarStatus, hdr, func(b *packet.Builder) {
			b.Status(g.vehicle, packet.StatusRecord{
				MaxRPM:             sim.DefaultMaxRPM,
				MaxGears:           8,
				ActualTyreCompound: sim.TyreCompoundID(f.Tyre),
				VisualTyreCompound: sim.TyreCompoundID(f.Tyre),
				TyresAgeLaps:       f.TyreAge,
			})
		}),
		g.build(layout.PacketSession, hdr, func(b *packet.Builder) {
			b.Session(packet.SessionRecord{
				TotalLaps:        demo.TotalLaps,
				TrackTemperature: 34,
				AirTemperature:   24,
				SafetyCarStatus:  uint8(f.SafetyCarStatus),
			})
		}),
	}
	if f.SessionEnded {
		out = append(out, g.build(layout.PacketEvent, hdr, func(b *packet.Builder) {
			b.Event(packet.EventRecord{Code: layout.EventSessionEnded})
		}))
	}
	return out
}

func (g *generator) build(id layout.PacketID, hdr packet.Header, fill func(*packet.Builder)) []byte {
	b := packet.NewBuilder(g.lay, id).Header(hdr)
	fill(b)
	return b.Bytes()
}

func main() {
	target := pflag.String("target", "127.0.0.1:20777", "UDP address of the listener")
	scenario := pflag.String("scenario", "race", "demo scenario to replay")
	year := pflag.Uint16("generation", 2024, "packet format to emit (2022-2025)")
	rate := pflag.Duration("interval", 50*time.Millisecond, "time between frames")
	vehicle := pflag.Int("vehicle", 0, "player car index")
	pflag.Parse()

	lay, err := layout.Default().LayoutFor(layout.Generation(*year))
	if err != nil {
		log.Fatal(err)
	}
	if *vehicle < 0 || *vehicle >= layout.MaxCars {
		log.Fatalf("vehicle must be in [0,%d)", layout.MaxCars)
	}
	s, err := demo.Lookup(*scenario)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := net.Dial("udp", *target)
	if err != nil {
		log.Fatalf("Failed to dial %s: %v", *target, err)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	g := &generator{
		lay:     lay,
		vehicle: *vehicle,
		session: uint64(time.Now().UnixNano()),
		physics: demo.NewPhysics(nil, 0),
	}

	fmt.Printf("Sending %s (%d format) to %s. Press Ctrl+C to exit.\n", s.Name, *year, *target)
	start := time.Now()
	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := s.Offset + time.Since(start)
			if elapsed > demo.Duration {
				fmt.Println("Scenario finished.")
				return
			}
			for _, dg := range g.datagrams(elapsed) {
				if _, err := conn.Write(dg); err != nil {
					log.Printf("Write failed: %v", err)
				}
			}
		}
	}
}
