package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"steiner-planner/internal/config"
	"steiner-planner/internal/export"
	"steiner-planner/internal/steiner"
)

func main() {
	configPath := flag.String("config", "", "JSON configuration file (built-in scene when empty)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	once := flag.Bool("once", false, "build one network, write the outputs and exit")
	geojsonPath := flag.String("geojson", "network.geojson", "GeoJSON output file, empty to skip")
	svgPath := flag.String("svg", "", "SVG output file, empty to skip")
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Steiner Network Planner")
	log.Println("========================================")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		cfg = loaded
		log.Printf("✅ Loaded configuration from %s\n", *configPath)
	} else {
		log.Println("ℹ️  No configuration given, using the built-in scene")
	}

	if *once {
		if err := runOnce(cfg, *geojsonPath, *svgPath); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	srv := newServer(cfg, log.Default())

	log.Println("Checking for an existing network file...")
	if *geojsonPath != "" {
		if snap, err := export.LoadGeoJSON(*geojsonPath, nil); err == nil {
			srv.setLatest(snap)
			log.Printf("✅ Loaded existing network: %d terminals, %d edges\n", len(snap.Terminals), len(snap.Edges))
		} else {
			log.Println("ℹ️  No existing network found (this is normal on first run)")
			log.Println("   Call POST /network to build one")
		}
	}
	log.Println("")

	log.Printf("Server starting on %s\n", *addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /network          - Build a network (body: configuration, empty for default)")
	log.Println("  GET  /network/latest   - Get the most recent network as GeoJSON")
	log.Println("  GET  /stream           - Websocket: build with progress events")
	log.Println("  GET  /health           - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(*addr, srv.routes()); err != nil {
		log.Fatal(err)
	}
}

// runOnce builds a single network and writes the requested outputs.
func runOnce(cfg *config.Config, geojsonPath, svgPath string) error {
	scene, err := cfg.Scene(log.Default())
	if err != nil {
		return err
	}

	res, err := steiner.Build(scene, cfg.Options(log.Default()))
	if err != nil {
		return err
	}
	snap := res.Snapshot()

	if geojsonPath != "" {
		if err := export.SaveGeoJSON(snap, geojsonPath, nil); err != nil {
			return err
		}
	}
	if svgPath != "" {
		if err := export.SaveSVG(snap, svgPath); err != nil {
			return err
		}
		log.Printf("🖼️  SVG written to %s\n", svgPath)
	}
	if geojsonPath == "" && svgPath == "" {
		return steiner.Export(res, export.GeoJSONRenderer{W: os.Stdout})
	}
	return nil
}
