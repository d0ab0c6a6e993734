// sysidctl runs the analysis core from the command line: either a single
// pass over a logged experiment, printing the resulting gains as JSON, or
// an HTTP server exposing the same analysis over POST /analyze. Config is
// loaded the way multiserver loads its own: koanf layers struct defaults
// under a YAML file, missing-file is not an error.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/sysid-core/analysis"
	"github.com/nasa-jpl/sysid-core/httpapi"
	"github.com/nasa-jpl/sysid-core/jsonconvert"
	"github.com/nasa-jpl/sysid-core/mathx"
)

// roundGains rounds every fitted/synthesized coefficient to the nearest
// 1e-5 before printing, so terminal output isn't full-precision float noise.
func roundGains(g *analysis.Gains) {
	const unit = 1e-5
	for i, b := range g.Feedforward.Beta {
		g.Feedforward.Beta[i] = mathx.Round(b, unit)
	}
	g.Feedforward.RMSE = mathx.Round(g.Feedforward.RMSE, unit)
	g.Feedforward.RSquare = mathx.Round(g.Feedforward.RSquare, unit)
	g.Feedback.Kp = mathx.Round(g.Feedback.Kp, unit)
	g.Feedback.Kd = mathx.Round(g.Feedback.Kd, unit)
	if g.TrackWidth != nil {
		rounded := mathx.Round(*g.TrackWidth, unit)
		g.TrackWidth = &rounded
	}
}

var (
	// Version is injected via ldflags at build time.
	Version = "1"

	// ConfigFileName is the YAML file sysidctl looks for in the working directory.
	ConfigFileName = "sysidctl.yml"
	k              = koanf.New(".")
)

// Config bundles what sysidctl needs: where to serve, where to read a
// default experiment log from, and the analysis settings to apply.
type Config struct {
	Addr     string            `koanf:"addr"`
	Path     string            `koanf:"path"`
	Settings analysis.Settings `koanf:"settings"`
}

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:     ":8090",
		Settings: analysis.DefaultSettings(),
	}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") {
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `sysidctl analyzes logged step/ramp test data from a motorized mechanism
and fits feedforward and feedback gains.

Usage:
	sysidctl <command>

Commands:
	run
	serve
	convert <in.json> <out.json>
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `sysidctl is configured via its .yaml file. Without a configuration,
"run" has no experiment log to read (set path in the .yaml file), and
"serve" listens on :8090.

Fields:
	addr     - address to listen on for "serve"
	path     - path to a logged experiment JSON for "run"
	settings - analysis.Settings: motionThreshold, windowSize,
	           stepTestDuration, velocityThreshold, preset, lqr,
	           feedbackMode, feedbackLoop, convertGainsToEncTicks,
	           gearing, cpr, dataset`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := yml.NewEncoder(f).Encode(c); err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	if err := yml.NewEncoder(os.Stdout).Encode(c); err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("sysidctl version %v\n", Version)
}

func run() {
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatal(err)
	}
	if c.Path == "" {
		log.Fatal("run requires a path to an experiment log (set via sysidctl.yml's path field)")
	}
	manager, err := analysis.New(c.Path, c.Settings, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	gains, err := manager.Calculate()
	if err != nil {
		log.Fatal(err)
	}
	roundGains(&gains)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(gains); err != nil {
		log.Fatal(err)
	}
}

// convert rewrites a legacy frc-char-schema experiment log at args[2] into
// the native sysid schema at args[3].
func convert(args []string) {
	if len(args) != 4 {
		log.Fatal("convert requires exactly two paths: sysidctl convert <in.json> <out.json>")
	}
	if err := jsonconvert.ConvertFile(args[2], args[3]); err != nil {
		log.Fatal(err)
	}
}

func serve() {
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatal(err)
	}
	router := httpapi.NewRouter(log.Default())
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, router))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "serve":
		serve()
		return
	case "convert":
		convert(args)
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
