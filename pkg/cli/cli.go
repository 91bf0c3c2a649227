package cli

import (
	"github.com/spf13/cobra"

	"github.com/kamrankamilli/jvnc/pkg/config"
	"github.com/kamrankamilli/jvnc/pkg/fb"
	"github.com/kamrankamilli/jvnc/pkg/internal/log"
	"github.com/kamrankamilli/jvnc/pkg/painter"
	"github.com/kamrankamilli/jvnc/pkg/rfb"
	"github.com/kamrankamilli/jvnc/pkg/ws"
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&config.BindAddr, "listen", "l", config.BindAddr, "Address the RFB server listens on")
	flags.StringVarP(&config.WSBindAddr, "ws-listen", "w", config.WSBindAddr, "Address for the websocket bridge (disabled when empty)")
	flags.IntVar(&config.Width, "width", config.Width, "Framebuffer width in pixels")
	flags.IntVar(&config.Height, "height", config.Height, "Framebuffer height in pixels")
	flags.IntVar(&config.MaxClients, "max-clients", config.MaxClients, "Maximum concurrent client connections (0 for unlimited)")
	flags.BoolVarP(&config.Debug, "debug", "d", config.Debug, "Enable debug logging")
}

// RootCmd is the entrypoint of the jvnc server.
var RootCmd = &cobra.Command{
	Use:   "jvnc",
	Short: "A toy RFB server drawing an animated pattern",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	frameBuffer := fb.New(config.Width, config.Height)
	mode := &fb.ColorMode{}

	p := painter.New(frameBuffer, mode)
	p.Start()

	server := rfb.NewServer(&rfb.ServerOpts{
		BindAddr:   config.BindAddr,
		MaxClients: config.MaxClients,
		Buffer:     frameBuffer,
		ColorMode:  mode,
	})

	if config.WSBindAddr != "" {
		bridge := ws.NewBridge(config.WSBindAddr, config.BindAddr)
		go func() {
			if err := bridge.Serve(cmd.Context()); err != nil {
				log.Errorf("Websocket bridge exited: %s", err)
			}
		}()
	}

	return server.Serve(cmd.Context())
}
