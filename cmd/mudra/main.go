package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/pose"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// profileConfig is the shape stored in a profile's config column. Field names
// follow the Go config structs.
type profileConfig struct {
	Control *control.Config `json:"control,omitempty"`
	Pose    *pose.Config    `json:"pose,omitempty"`
}

func main() {
	var (
		addr     = flag.String("addr", ":8080", "HTTP listen address")
		source   = flag.String("source", "webcam", "landmark source: webcam or phone")
		device   = flag.Int("device", 0, "webcam device id")
		profile  = flag.String("profile", "", "named profile to load thresholds from")
		withTray = flag.Bool("tray", false, "run the system tray UI")
	)
	flag.Parse()

	fmt.Println("Mudra - Hand Interaction Engine")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dbDir, "mudra.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	controlCfg := control.DefaultConfig()
	poseCfg := pose.DefaultConfig()
	if *profile != "" {
		controlCfg, poseCfg = loadProfile(st, *profile, controlCfg, poseCfg)
	}

	hub := server.NewHub()
	metrics := server.NewMetrics()

	appCfg := app.Config{
		Store:   st,
		Control: controlCfg,
		Pose:    poseCfg,
		Hub:     hub,
		Metrics: metrics,
	}

	serverCfg := server.Config{
		Store:   st,
		Hub:     hub,
		Metrics: metrics,
	}

	switch *source {
	case "phone":
		ingest := server.NewPhoneSource()
		appCfg.Source = ingest
		appCfg.SourceKind = store.SourcePhone
		serverCfg.Ingest = ingest
	case "webcam":
		cam := capture.DefaultCameraConfig()
		cam.DeviceID = *device
		appCfg.Camera = cam
		appCfg.SourceKind = store.SourceWebcam
	default:
		log.Fatalf("Unknown source %q (want webcam or phone)", *source)
	}

	a := app.New(appCfg)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()
	a.SetEnabled(true)

	serverCfg.State = a.LatestOutput
	if *source == "webcam" {
		serverCfg.Camera = a.Camera()
	}

	if webDir := findWebDir(); webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
		serverCfg.StaticDir = webDir
	}

	srv := server.New(serverCfg)

	if !*withTray {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// systray.Run must own the main goroutine.
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() { openBrowser("http://localhost" + *addr) })
	t.OnQuit(a.Stop)

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.SetOutput(a.LatestOutput())
		}
	}()

	t.Run()
}

// loadProfile overlays stored thresholds onto the defaults. A missing profile
// is fatal; a profile with a partial config only overrides what it names.
func loadProfile(st *store.Store, name string, controlCfg control.Config, poseCfg pose.Config) (control.Config, pose.Config) {
	p, err := st.Profiles().GetByName(name)
	if err != nil {
		log.Fatalf("Failed to load profile %q: %v", name, err)
	}

	var cfg profileConfig
	if err := json.Unmarshal([]byte(p.Config), &cfg); err != nil {
		log.Fatalf("Profile %q has invalid config: %v", name, err)
	}
	if cfg.Control != nil {
		controlCfg = *cfg.Control
	}
	if cfg.Pose != nil {
		poseCfg = *cfg.Pose
	}

	fmt.Printf("Loaded profile: %s\n", name)
	return controlCfg, poseCfg
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
