package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"street-bites/config"
	"street-bites/pkg/domain"
	"street-bites/storefront-cli/internal/board"
	"street-bites/storefront-cli/internal/client"
	"street-bites/storefront-cli/internal/kv"
	"street-bites/storefront-cli/internal/notify"
	"street-bites/storefront-cli/internal/poll"
	"street-bites/storefront-cli/internal/session"
)

const usage = `usage: street-bites [-api URL] [-state FILE] <command> [args]

commands:
  menu [-watch] [-interval 5s]     show the menu
  offers                           show active offers
  location [-watch] [-interval 10s] show where the truck is
  cart add|remove <item-id>        change the cart
  cart qty <item-id> <delta>       change a line's quantity
  cart offer <offer-id>|none       apply or drop an offer
  cart show|clear
  checkout -name NAME [-notes ..]  place the cart as an order
  notify [-interval 5s]            alert when this device's orders are ready
  board [-interval 10s] [-once]    kitchen view of open orders
  login [-password ..]             sign in as admin
  verify <request-id> <code>       finish a login with a one-time code
  status <order-id> <status>       move an order along
`

type app struct {
	api     *client.Client
	session *session.Session
	out     io.Writer
}

func main() {
	config.LoadEnv()
	log.SetFlags(0)

	defaultState, err := kv.DefaultPath()
	if err != nil {
		defaultState = "street-bites-state.json"
	}
	apiURL := flag.String("api", config.GetEnv("STREET_BITES_URL", "http://localhost:8080"), "storefront base URL")
	statePath := flag.String("state", config.GetEnv("STREET_BITES_STATE", defaultState), "local state file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(*statePath)
	if err != nil {
		log.Fatal("Failed to open local state:", err)
	}
	a := &app{
		api:     client.New(*apiURL, &http.Client{Timeout: 15 * time.Second}),
		session: session.New(store),
		out:     os.Stdout,
	}
	a.api.SetSession(a.session.AdminCookie())

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Fatal(describe(err))
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "menu":
		return a.menu(ctx, args)
	case "offers":
		return a.offers(ctx)
	case "location":
		return a.location(ctx, args)
	case "cart":
		return a.cart(ctx, args)
	case "checkout":
		return a.checkout(ctx, args)
	case "notify":
		return a.notify(ctx, args)
	case "board":
		return a.board(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "verify":
		return a.verify(ctx, args)
	case "status":
		return a.status(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) menu(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("menu", flag.ExitOnError)
	watch := fs.Bool("watch", false, "keep refreshing")
	interval := fs.Duration("interval", 5*time.Second, "refresh interval with -watch")
	fs.Parse(args)

	show := func(mb client.MenuBoard) {
		if *watch {
			clearScreen(a.out)
		}
		if err := board.RenderMenu(a.out, mb.Items, a.session.Cart().Offer); err != nil {
			log.Printf("[cli] render menu: %v", err)
		}
		fmt.Fprintln(a.out)
		if err := board.RenderOffers(a.out, mb.Offers); err != nil {
			log.Printf("[cli] render offers: %v", err)
		}
	}
	if !*watch {
		mb, err := a.api.MenuBoard(ctx)
		if err != nil {
			return err
		}
		show(mb)
		return nil
	}
	return poll.Every(ctx, poll.Config{Interval: *interval, OnError: logPollError("menu")}, a.api.MenuBoard, show)
}

func (a *app) offers(ctx context.Context) error {
	offers, err := a.api.Offers(ctx)
	if err != nil {
		return err
	}
	return board.RenderOffers(a.out, offers)
}

func (a *app) location(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("location", flag.ExitOnError)
	watch := fs.Bool("watch", false, "keep refreshing")
	interval := fs.Duration("interval", 10*time.Second, "refresh interval with -watch")
	fs.Parse(args)

	show := func(loc *domain.LocationData) {
		if !loc.Online() {
			fmt.Fprintf(a.out, "%s is offline", loc.Name)
			if loc.NextOnlineTime != "" {
				fmt.Fprintf(a.out, ", back %s", loc.NextOnlineTime)
			}
			fmt.Fprintln(a.out)
			return
		}
		fmt.Fprintf(a.out, "%s, %s, open %s to %s\n", loc.Name, loc.Address, loc.OpenTime, loc.CloseTime)
		if loc.Coordinates.Lat != 0 || loc.Coordinates.Lng != 0 {
			fmt.Fprintf(a.out, "map: https://maps.google.com/?q=%f,%f\n", loc.Coordinates.Lat, loc.Coordinates.Lng)
		}
	}
	if !*watch {
		loc, err := a.api.Location(ctx)
		if err != nil {
			return err
		}
		show(loc)
		return nil
	}
	return poll.Every(ctx, poll.Config{Interval: *interval, OnError: logPollError("location")}, a.api.Location, show)
}

func (a *app) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	cart := a.session.Cart()

	switch args[0] {
	case "show":
		if cart.Count() == 0 {
			fmt.Fprintln(a.out, "Your cart is empty.")
			return nil
		}
		return board.RenderCart(a.out, cart)
	case "clear":
		cart.Clear()
	case "add":
		if len(args) < 2 {
			return errors.New("cart add needs an item id")
		}
		item, err := a.findItem(ctx, args[1])
		if err != nil {
			return err
		}
		cart.Add(item)
	case "remove":
		if len(args) < 2 {
			return errors.New("cart remove needs an item id")
		}
		cart.Remove(args[1])
	case "qty":
		if len(args) < 3 {
			return errors.New("cart qty needs an item id and a delta")
		}
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad delta %q", args[2])
		}
		cart.UpdateQuantity(args[1], delta)
	case "offer":
		if len(args) < 2 {
			return errors.New("cart offer needs an offer id or none")
		}
		if args[1] == "none" {
			cart.RemoveOffer()
			break
		}
		offer, err := a.findOffer(ctx, args[1])
		if err != nil {
			return err
		}
		cart.ApplyOffer(offer)
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}

	if err := a.session.SaveCart(cart); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d item(s), total %.2f\n", cart.Count(), cart.Total())
	return nil
}

func (a *app) findItem(ctx context.Context, id string) (domain.MenuItem, error) {
	items, err := a.api.Menu(ctx)
	if err != nil {
		return domain.MenuItem{}, err
	}
	for _, item := range items {
		if item.ID != id {
			continue
		}
		if !item.Available {
			return domain.MenuItem{}, fmt.Errorf("%s is sold out", item.Name)
		}
		return item, nil
	}
	return domain.MenuItem{}, fmt.Errorf("no menu item %q", id)
}

func (a *app) findOffer(ctx context.Context, id string) (domain.SpecialOffer, error) {
	offers, err := a.api.Offers(ctx)
	if err != nil {
		return domain.SpecialOffer{}, err
	}
	for _, o := range offers {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.SpecialOffer{}, fmt.Errorf("no active offer %q", id)
}

// checkout leaves the cart untouched unless the server accepted the order.
func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	name := fs.String("name", a.session.UserName(), "name to call out at pickup")
	notes := fs.String("notes", "", "notes for the kitchen")
	fs.Parse(args)

	cart := a.session.Cart()
	if cart.Count() == 0 {
		return errors.New("your cart is empty")
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("checkout needs -name")
	}
	deviceID, err := a.session.DeviceID()
	if err != nil {
		return err
	}

	order, err := a.api.PlaceOrder(ctx, cart.OrderRequest(*name, *notes, deviceID))
	if err != nil {
		return fmt.Errorf("order not placed, your cart is kept: %w", err)
	}

	cart.Clear()
	if err := a.session.SaveCart(cart); err != nil {
		log.Printf("[cli] clear cart: %v", err)
	}
	if err := a.session.SetUserName(*name); err != nil {
		log.Printf("[cli] save name: %v", err)
	}

	label := order.FormattedOrderID
	if label == "" {
		label = order.ID
	}
	fmt.Fprintf(a.out, "Order %s placed for %s, total %.2f\n", label, order.CustomerName, order.Total)
	fmt.Fprintln(a.out, "Run `street-bites notify` to hear when it is ready.")
	return nil
}

func (a *app) notify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	interval := fs.Duration("interval", 5*time.Second, "poll interval")
	fs.Parse(args)

	deviceID, err := a.session.DeviceID()
	if err != nil {
		return err
	}
	notifier := notify.NewDeviceNotifier(deviceID)
	fetch := func(ctx context.Context) ([]domain.Order, error) {
		return a.api.ActiveOrders(ctx, deviceID)
	}

	fmt.Fprintln(a.out, "Watching your orders, Ctrl-C to stop.")
	return poll.Every(ctx, poll.Config{Interval: *interval, OnError: logPollError("notify")}, fetch, func(orders []domain.Order) {
		for _, alert := range notifier.Observe(orders) {
			switch alert.Status {
			case domain.StatusReady:
				fmt.Fprintf(a.out, "\a%s: order %s is ready for pickup!\n", alert.CustomerName, alert.Label)
			case domain.StatusCancelled:
				fmt.Fprintf(a.out, "\a%s: order %s was cancelled.\n", alert.CustomerName, alert.Label)
			}
		}
	})
}

func (a *app) board(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("board", flag.ExitOnError)
	interval := fs.Duration("interval", 10*time.Second, "refresh interval")
	once := fs.Bool("once", false, "print once and exit")
	fs.Parse(args)

	fetch := func(ctx context.Context) ([]domain.Order, error) {
		return a.api.ActiveOrders(ctx, "")
	}
	if *once {
		orders, err := fetch(ctx)
		if err != nil {
			return err
		}
		return board.Render(a.out, orders, time.Now())
	}
	return poll.Every(ctx, poll.Config{Interval: *interval, OnError: logPollError("board")}, fetch, func(orders []domain.Order) {
		clearScreen(a.out)
		if err := board.Render(a.out, orders, time.Now()); err != nil {
			log.Printf("[cli] render board: %v", err)
		}
	})
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	timeout := fs.Duration("timeout", 5*time.Minute, "how long to wait for approval")
	fs.Parse(args)

	if *password == "" {
		return errors.New("login needs -password or ADMIN_PASSWORD")
	}
	resp, err := a.api.Login(ctx, *password)
	if err != nil {
		return err
	}
	if !resp.RequiresApproval {
		return a.saveSession()
	}

	fmt.Fprintf(a.out, "Waiting for approval of request %s.\n", resp.RequestID)
	fmt.Fprintf(a.out, "Or finish with: street-bites verify %s <code>\n", resp.RequestID)

	cfg := poll.Config{Interval: 2 * time.Second, Timeout: *timeout, OnError: logPollError("login")}
	status, err := poll.Until(ctx, cfg, func(ctx context.Context) (domain.LoginStatus, error) {
		return a.api.LoginStatus(ctx, resp.RequestID)
	}, domain.LoginStatus.Terminal)
	if errors.Is(err, poll.ErrTimeout) {
		return errors.New("login was not approved in time")
	}
	if err != nil {
		return err
	}

	switch status {
	case domain.LoginUsed, domain.LoginApproved, domain.LoginVerified:
		if a.api.Session() == "" {
			return fmt.Errorf("login %s but no session was issued", status)
		}
		return a.saveSession()
	default:
		return fmt.Errorf("login %s", status)
	}
}

func (a *app) verify(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("verify needs a request id and a code")
	}
	if err := a.api.Verify(ctx, args[0], args[1]); err != nil {
		return err
	}
	return a.saveSession()
}

func (a *app) saveSession() error {
	if err := a.session.SetAdminCookie(a.api.Session()); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed in.")
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("status needs an order id and a status")
	}
	next := domain.OrderStatus(strings.ToLower(args[1]))
	if !next.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	order, err := a.api.SetStatus(ctx, args[0], next)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		a.session.SetAdminCookie("")
		return errors.New("not signed in, run `street-bites login` first")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s\n", args[0], order.Status)
	return nil
}

func logPollError(what string) func(error) {
	return func(err error) {
		log.Printf("[cli] %s: %s", what, describe(err))
	}
}

func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return fmt.Sprintf("%v, try again in %s", err, apiErr.RetryAfter)
	}
	return err.Error()
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}
