// Command shortctl 在终端里调用 guestlink 服务
//
//	shortctl -server http://localhost:8080 create https://example.com
//	shortctl protect <code> [true|false]
//	shortctl open <code>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"guestlink/internal/interstitial"
)

const usage = "expected 'create <url>', 'protect <code> [true|false]' or 'open <code>'"

func main() {
	server := flag.String("server", envOr("GUESTLINK_SERVER", "http://localhost:8080"), "guestlink server base URL")
	lang := flag.String("lang", "", "Accept-Language sent with every request")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newClient(*server, *lang, *timeout)

	var err error
	switch args[0] {
	case "create":
		err = doCreate(ctx, c, args[1])
	case "protect":
		flagValue := true
		if len(args) > 2 {
			if flagValue, err = strconv.ParseBool(args[2]); err != nil {
				log.Fatalf("Invalid flag %q: %v", args[2], err)
			}
		}
		err = doProtect(ctx, c, args[1], flagValue)
	case "open":
		err = doOpen(ctx, c, args[1], *server, os.Stdin, os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", args[0], err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func doCreate(ctx context.Context, c *client, target string) error {
	link, err := c.Create(ctx, target)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n  id:    %s\n  title: %s\n  logo:  %s\n", link.ShortLink, link.ID, link.Title, link.Logo)
	return nil
}

func doProtect(ctx context.Context, c *client, code string, useLanding bool) error {
	link, err := c.SetLanding(ctx, code, useLanding)
	if err != nil {
		return err
	}
	fmt.Printf("%s useLanding=%s\n", link.ShortURL, link.UseLanding)
	return nil
}

// doOpen 解析短码；开启确认页的链接先走一遍倒计时，再输出最终跳转地址
func doOpen(ctx context.Context, c *client, code, home string, in io.Reader, out io.Writer) error {
	res, err := c.Resolve(ctx, code)
	if err != nil {
		return err
	}
	if !res.UseLanding {
		fmt.Fprintf(out, "navigate: %s\n", res.URL)
		return nil
	}

	snap, err := confirm(ctx, res.URL, home, in, out, interstitial.DefaultTimings)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "navigate: %s\n", snap.Target)
	return nil
}

func confirm(ctx context.Context, destination, home string, in io.Reader, out io.Writer, timings interstitial.Timings) (interstitial.Snapshot, error) {
	m := interstitial.New(destination, home,
		interstitial.WithTimings(timings),
		interstitial.WithObserver(func(s interstitial.Snapshot) {
			switch s.State {
			case interstitial.CountingDown:
				fmt.Fprintf(out, "redirecting in %d...\n", s.Remaining)
			case interstitial.Splash:
				fmt.Fprintln(out, "redirecting...")
			}
		}))
	defer m.Close()

	fmt.Fprintf(out, "This link leads to %s\n[y] Sure, Go!  [n] Not Sure: ", destination)

	go func() {
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			m.Close()
			return
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			m.Confirm()
		case "n", "no":
			m.Decline()
		default:
			m.Close()
		}
	}()

	return m.Run(ctx)
}
