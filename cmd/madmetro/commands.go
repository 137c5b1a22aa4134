package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"madmetro/internal/geo"
	"madmetro/internal/geocode"
	"madmetro/internal/realtime"
	"madmetro/internal/server"
	"madmetro/internal/storage"
	"madmetro/internal/webwatch"
)

const userAgent = "madmetro/1.0 (Madison Metro WebWatch client)"

var jsonFlag = &cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"}

func (a *app) routesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "list every known route",
		Flags: []cli.Flag{jsonFlag},
		Action: func(c *cli.Context) error {
			all := a.ww.Routes()
			if c.Bool("json") {
				return printJSON(c.App.Writer, all)
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tNAME\tACTIVE")
			for _, r := range all {
				fmt.Fprintf(tw, "%s\t%s\t%t\n", r.ID, r.Name, r.Active)
			}
			return tw.Flush()
		},
	}
}

func (a *app) pathCommand() *cli.Command {
	return &cli.Command{
		Name:      "path",
		Usage:     "print the drawn path of a route",
		ArgsUsage: "<route-id>",
		Flags:     []cli.Flag{jsonFlag},
		Action: func(c *cli.Context) error {
			points, err := a.ww.RoutePath(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, points)
			}
			if center, ok := webwatch.Center(points); ok {
				fmt.Fprintf(c.App.Writer, "center %s,%s\n", center.Latitude, center.Longitude)
			}
			for i, path := range webwatch.Paths(points) {
				fmt.Fprintf(c.App.Writer, "path %d (%d points)\n", i, len(path))
				for _, p := range path {
					fmt.Fprintf(c.App.Writer, "  %s,%s\n", p.Latitude, p.Longitude)
				}
			}
			return nil
		},
	}
}

func (a *app) currentCommand() *cli.Command {
	return &cli.Command{
		Name:      "current",
		Usage:     "print the buses and arrival predictions of a route",
		ArgsUsage: "<route-id>",
		Flags: []cli.Flag{
			jsonFlag,
			&cli.StringFlag{Name: "near", Usage: "rank buses by distance from `LAT,LON`"},
			&cli.StringFlag{Name: "near-address", Usage: "rank buses by distance from a Madison `ADDRESS`"},
		},
		Action: func(c *cli.Context) error {
			data, err := a.ww.RouteCurrentData(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, data)
			}

			lat, lon, ranked, err := a.origin(c)
			if err != nil {
				return err
			}

			tw := newTable(c.App.Writer)
			if ranked {
				fmt.Fprintln(tw, "BUS\tHEADING\tNEXT STOP\tTO\tDISTANCE")
				for _, r := range geo.RankByDistance(data.Vehicles, lat, lon, vehicleCoord) {
					v := r.Item
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f mi\n",
						v.Number, v.Direction, v.NextStop, v.FinalStop, geo.MetersToMiles(r.DistanceMeters))
				}
			} else {
				fmt.Fprintln(tw, "BUS\tHEADING\tNEXT STOP\tTO")
				for _, v := range data.Vehicles {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Number, v.Direction, v.NextStop, v.FinalStop)
				}
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "STOP\tARRIVALS")
			for _, st := range data.StopTimes {
				fmt.Fprintf(tw, "%s\t%s\n", st.StopID, strings.Join(st.Times, ", "))
			}
			return tw.Flush()
		},
	}
}

// origin resolves the --near or --near-address flag. ranked is false when
// neither is set.
func (a *app) origin(c *cli.Context) (lat, lon float64, ranked bool, err error) {
	if near := c.String("near"); near != "" {
		lat, lon, err = parseNear(near)
		return lat, lon, err == nil, err
	}
	address := c.String("near-address")
	if address == "" {
		return 0, 0, false, nil
	}

	place, err := geocode.New(a.cfg.GeocodeURL, userAgent).Search(c.Context, address)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode %q: %w", address, err)
	}
	if place == nil {
		return 0, 0, false, fmt.Errorf("no Madison address matches %q", address)
	}
	a.logger.Debug("geocoded address", "address", address, "place", place.DisplayName)
	return place.Latitude.InexactFloat64(), place.Longitude.InexactFloat64(), true, nil
}

// parseNear parses a "lat,lon" pair.
func parseNear(s string) (lat, lon float64, err error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("--near wants LAT,LON, got %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonStr)
	}
	return lat, lon, nil
}

func vehicleCoord(v webwatch.VehicleLocation) (float64, float64, bool) {
	if !v.Latitude.Valid || !v.Longitude.Valid {
		return 0, 0, false
	}
	return v.Latitude.Decimal.InexactFloat64(), v.Longitude.Decimal.InexactFloat64(), true
}

func (a *app) historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "print archived polls of a route, or the track of one bus",
		ArgsUsage: "<route-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vehicle", Usage: "bus `NUMBER` to track"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "rows to print"},
		},
		Action: func(c *cli.Context) error {
			routeID := c.Args().First()
			if _, ok := a.ww.Route(routeID); !ok {
				return fmt.Errorf("route %q: %w", routeID, webwatch.ErrInvalidRoute)
			}
			db, err := a.openArchive()
			if err != nil {
				return err
			}
			defer db.Close()

			tw := newTable(c.App.Writer)
			if number := c.String("vehicle"); number != "" {
				obs, err := db.VehicleHistory(c.Context, routeID, number, c.Int("limit"))
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "POLLED\tLAT\tLON\tHEADING\tNEXT STOP")
				for _, o := range obs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.PolledAt.Local().Format(time.DateTime),
						o.Latitude.Decimal, o.Longitude.Decimal, o.Direction, o.NextStop)
				}
				return tw.Flush()
			}

			polls, err := db.RecentPolls(c.Context, routeID, c.Int("limit"))
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "POLL\tPOLLED\tSTOPS\tBUSES")
			for _, p := range polls {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", p.PollID, p.PolledAt.Local().Format(time.DateTime),
					p.StopTimeCount, p.VehicleCount)
			}
			return tw.Flush()
		},
	}
}

func (a *app) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "poll every active route until interrupted, archiving when MADMETRO_DB_PATH is set",
		Action: func(c *cli.Context) error {
			poller, closeArchive, err := a.newPoller(c.Context, realtime.NewStore())
			if err != nil {
				return err
			}
			defer closeArchive()

			poller.Start(c.Context)
			return nil
		},
	}
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with a background poller",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "listen port (overrides MADMETRO_PORT)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("port") {
				a.cfg.Port = c.Int("port")
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			store := realtime.NewStore()
			poller, closeArchive, err := a.newPoller(ctx, store)
			if err != nil {
				return err
			}
			defer closeArchive()

			srv := server.New(a.cfg, a.ww, store, a.logger)
			stopPoller := runPoller(ctx, poller)
			defer func() {
				cancel() // stops the pruner too
				stopPoller()
			}()
			go func() {
				select {
				case <-poller.Ready():
					srv.SetReady()
				case <-ctx.Done():
				}
			}()

			return srv.ListenAndServe(ctx)
		},
	}
}

// runPoller starts p in the background. The returned stop cancels it and
// waits for the poll in flight, so the archive can be closed afterwards.
func runPoller(ctx context.Context, p *realtime.Poller) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Start(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// newPoller builds a poller over the active routes. When an archive is
// configured it is attached and pruned in the background until ctx ends; the
// returned close waits for the pruner before closing the archive.
func (a *app) newPoller(ctx context.Context, store *realtime.Store) (*realtime.Poller, func(), error) {
	var active []string
	for _, r := range a.ww.Routes() {
		if r.Active {
			active = append(active, r.ID)
		}
	}
	poller := realtime.NewPoller(a.ww, active, store, a.cfg.PollInterval, a.cfg.PollWorkers, a.logger)

	if a.cfg.DBPath == "" {
		return poller, func() {}, nil
	}
	db, err := a.openArchive()
	if err != nil {
		return nil, nil, err
	}
	poller.WithArchive(db)

	pruned := make(chan struct{})
	if a.cfg.Retention > 0 {
		go func() {
			defer close(pruned)
			a.pruneArchive(ctx, db, a.cfg.Retention)
		}()
	} else {
		close(pruned)
	}
	return poller, func() {
		<-pruned
		db.Close()
	}, nil
}

func (a *app) openArchive() (*storage.DB, error) {
	if a.cfg.DBPath == "" {
		return nil, errors.New("no archive configured, set MADMETRO_DB_PATH")
	}
	return storage.Open(a.cfg.DBPath, a.logger)
}

// pruneArchive drops polls older than retention once an hour.
func (a *app) pruneArchive(ctx context.Context, db *storage.DB, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if _, err := db.PruneBefore(ctx, time.Now().Add(-retention)); err != nil && ctx.Err() == nil {
			a.logger.Error("prune archive", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
