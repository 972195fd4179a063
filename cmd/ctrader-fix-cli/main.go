// Command ctrader-fix-cli is a readline REPL exercising both the Market
// and Trade channels against a configured cTrader FIX endpoint.
//
// Grounded on the teacher's fixclient/repl.go for the command-loop shape
// (readline.NewEx with a prefix completer, a switch over the first
// whitespace-separated token) and fixclient/fixapp.go for wiring a
// quickfix.Application into an Initiator before handing control to the
// REPL loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/clock"
	"github.com/gurre/ctrader-fix/config"
	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/market"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/router"
	"github.com/gurre/ctrader-fix/session"
	"github.com/gurre/ctrader-fix/storage"
	"github.com/gurre/ctrader-fix/trade"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file (optional)")
	dbPath := flag.String("db", "", "path to a SQLite database for persistence (optional)")
	flag.Parse()

	cfg := config.Load(*envPath)

	var store *storage.Store
	if *dbPath != "" {
		var err error
		store, err = storage.Open(*dbPath)
		if err != nil {
			log.Fatalf("cli: open storage: %v", err)
		}
		defer store.Close()
	}

	marketChannel, err := newMarketChannel(cfg.Market)
	if err != nil {
		log.Fatalf("cli: build market channel: %v", err)
	}
	tradeChannel, err := newTradeChannel(cfg.Trade)
	if err != nil {
		log.Fatalf("cli: build trade channel: %v", err)
	}

	printer := printingHandler{}
	if store == nil {
		marketChannel.SetHandler(printer)
		tradeChannel.SetHandler(printer)
	} else {
		marketChannel.SetHandler(multiMarketHandler{printer, storage.NewMarketSink(store)})
		tradeChannel.SetHandler(multiTradeHandler{printer, storage.NewTradeSink(store)})
	}

	repl(&cliState{market: marketChannel, trade: tradeChannel})
}

// newMarketChannel and newTradeChannel each wire a fresh Engine with an
// in-memory message store (no resend/session-recovery persistence needed
// for this CLI) and a null log factory (all operational logging comes
// from the package's own log.Printf calls, not quickfixgo's wire trace).
func newMarketChannel(cfg session.Config) (*market.Channel, error) {
	engine, err := session.New(cfg, clock.Real(), router.New(), quickfix.NewMemoryStoreFactory(), quickfix.NewNullLogFactory())
	if err != nil {
		return nil, err
	}
	return market.New(engine), nil
}

func newTradeChannel(cfg session.Config) (*trade.Channel, error) {
	engine, err := session.New(cfg, clock.Real(), router.New(), quickfix.NewMemoryStoreFactory(), quickfix.NewNullLogFactory())
	if err != nil {
		return nil, err
	}
	return trade.New(engine), nil
}

type cliState struct {
	market *market.Channel
	trade  *trade.Channel
}

func repl(s *cliState) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("connect", readline.PcItem("market"), readline.PcItem("trade")),
		readline.PcItem("logout", readline.PcItem("market"), readline.PcItem("trade")),
		readline.PcItem("subscribe", readline.PcItem("spot"), readline.PcItem("depth")),
		readline.PcItem("unsubscribe", readline.PcItem("spot"), readline.PcItem("depth")),
		readline.PcItem("quote"),
		readline.PcItem("order",
			readline.PcItem("market", readline.PcItem("buy"), readline.PcItem("sell")),
			readline.PcItem("limit", readline.PcItem("buy"), readline.PcItem("sell")),
		),
		readline.PcItem("cancel"),
		readline.PcItem("replace"),
		readline.PcItem("positions"),
		readline.PcItem("securities"),
		readline.PcItem("orders"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ctrader-fix> ",
		HistoryFile:     "/tmp/ctrader_fix_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("cli: failed to create readline: %v", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		if strings.ToLower(parts[0]) == "exit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dispatch(ctx, s, parts)
		cancel()
	}
}

func dispatch(ctx context.Context, s *cliState, parts []string) {
	switch strings.ToLower(parts[0]) {
	case "connect":
		handleConnect(ctx, s, parts)
	case "logout":
		handleLogout(ctx, s, parts)
	case "subscribe":
		handleSubscribe(ctx, s, parts)
	case "unsubscribe":
		handleUnsubscribe(ctx, s, parts)
	case "quote":
		handleQuote(s, parts)
	case "order":
		handleOrder(ctx, s, parts)
	case "cancel":
		handleCancel(ctx, s, parts)
	case "replace":
		handleReplace(ctx, s, parts)
	case "positions":
		handlePositions(ctx, s, parts)
	case "securities":
		handleSecurities(ctx, s)
	case "orders":
		handleOrders(s)
	case "help":
		printHelp()
	case "exit":
		return
	default:
		fmt.Println("Unknown command. Type 'help' for available commands.")
	}
}

func handleConnect(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: connect <market|trade>")
		return
	}
	var err error
	switch parts[1] {
	case "market":
		err = s.market.Connect(ctx)
	case "trade":
		err = s.trade.Connect(ctx)
	default:
		fmt.Println("Usage: connect <market|trade>")
		return
	}
	if err != nil {
		fmt.Printf("connect failed: %v\n", err)
		return
	}
	fmt.Printf("%s connected\n", parts[1])
}

func handleLogout(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: logout <market|trade>")
		return
	}
	var err error
	switch parts[1] {
	case "market":
		err = s.market.Logout(ctx)
	case "trade":
		err = s.trade.Logout(ctx)
	default:
		fmt.Println("Usage: logout <market|trade>")
		return
	}
	if err != nil {
		fmt.Printf("logout failed: %v\n", err)
	}
}

func handleSubscribe(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 3 {
		fmt.Println("Usage: subscribe <spot|depth> <symbol>")
		return
	}
	symbol := strings.ToUpper(parts[2])
	var err error
	switch parts[1] {
	case "spot":
		err = s.market.SubscribeSpot(ctx, symbol)
	case "depth":
		err = s.market.SubscribeDepth(ctx, symbol)
	default:
		fmt.Println("Usage: subscribe <spot|depth> <symbol>")
		return
	}
	if err != nil {
		fmt.Printf("subscribe failed: %v\n", err)
		return
	}
	fmt.Printf("subscribed %s %s\n", parts[1], symbol)
}

func handleUnsubscribe(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 3 {
		fmt.Println("Usage: unsubscribe <spot|depth> <symbol>")
		return
	}
	symbol := strings.ToUpper(parts[2])
	var err error
	switch parts[1] {
	case "spot":
		err = s.market.UnsubscribeSpot(ctx, symbol)
	case "depth":
		err = s.market.UnsubscribeDepth(ctx, symbol)
	default:
		fmt.Println("Usage: unsubscribe <spot|depth> <symbol>")
		return
	}
	if err != nil {
		fmt.Printf("unsubscribe failed: %v\n", err)
	}
}

func handleQuote(s *cliState, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: quote <symbol>")
		return
	}
	symbol := strings.ToUpper(parts[1])
	bid, ask, err := s.market.QuoteSpot(symbol)
	if err != nil {
		fmt.Printf("quote failed: %v\n", err)
		return
	}
	fmt.Printf("%s bid=%s ask=%s\n", symbol, bid.String(), ask.String())
}

func handleOrder(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 5 {
		fmt.Print(`Usage: order <market|limit> <buy|sell> <symbol> <qty> [price]
Examples:
  order market buy EURUSD 1000
  order limit sell EURUSD 1000 1.1050
`)
		return
	}
	ordType, side, symbol, qty := parts[1], strings.ToUpper(parts[2]), strings.ToUpper(parts[3]), parts[4]
	switch side {
	case "BUY":
		side = constants.SideBuy
	case "SELL":
		side = constants.SideSell
	default:
		fmt.Println("side must be buy or sell")
		return
	}

	var order *trade.Order
	var err error
	switch ordType {
	case "market":
		order, err = s.trade.NewMarketOrder(ctx, symbol, side, qty)
	case "limit":
		if len(parts) < 6 {
			fmt.Println("limit orders require a price")
			return
		}
		order, err = s.trade.NewLimitOrder(ctx, symbol, side, qty, parts[5])
	default:
		fmt.Println("order type must be market or limit")
		return
	}
	if err != nil {
		fmt.Printf("order failed: %v\n", err)
		return
	}
	fmt.Printf("order %s status=%s clOrdID=%s\n", order.OrderID, order.OrdStatus, order.ClOrdID)
}

func handleCancel(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 4 {
		fmt.Println("Usage: cancel <origClOrdID> <symbol> <side>")
		return
	}
	order, err := s.trade.CancelOrder(ctx, parts[1], strings.ToUpper(parts[2]), strings.ToUpper(parts[3]))
	if err != nil {
		fmt.Printf("cancel failed: %v\n", err)
		return
	}
	fmt.Printf("cancel accepted, status=%s\n", order.OrdStatus)
}

func handleReplace(ctx context.Context, s *cliState, parts []string) {
	if len(parts) < 6 {
		fmt.Println("Usage: replace <origClOrdID> <symbol> <side> <newQty> <newPrice>")
		return
	}
	order, err := s.trade.ReplaceOrder(ctx, parts[1], strings.ToUpper(parts[2]), strings.ToUpper(parts[3]), parts[4], parts[5])
	if err != nil {
		fmt.Printf("replace failed: %v\n", err)
		return
	}
	fmt.Printf("replace accepted, status=%s\n", order.OrdStatus)
}

func handlePositions(ctx context.Context, s *cliState, parts []string) {
	account := ""
	if len(parts) > 1 {
		account = parts[1]
	}
	positions, err := s.trade.FetchPositions(ctx, account)
	if err != nil {
		fmt.Printf("fetch positions failed: %v\n", err)
		return
	}
	for _, p := range positions {
		fmt.Printf("%s long=%s short=%s\n", p.Symbol, p.LongQty, p.ShortQty)
	}
}

func handleSecurities(ctx context.Context, s *cliState) {
	symbols, err := s.trade.FetchSecurityList(ctx)
	if err != nil {
		fmt.Printf("fetch security list failed: %v\n", err)
		return
	}
	fmt.Println(strings.Join(symbols, ", "))
}

func handleOrders(s *cliState) {
	for _, o := range s.trade.Store().GetAllOrders() {
		fmt.Printf("%-12s %-7s %-4s qty=%-10s price=%-10s status=%s\n", o.ClOrdID, o.Symbol, o.Side, o.OrderQty, o.Price, o.OrdStatus)
	}
}

func printHelp() {
	fmt.Print(`Commands:
  connect <market|trade>
  logout <market|trade>
  subscribe <spot|depth> <symbol>
  unsubscribe <spot|depth> <symbol>
  quote <symbol>
  order <market|limit> <buy|sell> <symbol> <qty> [price]
  cancel <origClOrdID> <symbol> <side>
  replace <origClOrdID> <symbol> <side> <newQty> <newPrice>
  positions [account]
  securities
  orders
  exit
`)
}

// printingHandler implements both market.Handler and trade.Handler by
// writing every event to stdout, giving the REPL a live feed alongside the
// request/response commands above.
type printingHandler struct{}

func (printingHandler) OnSpot(symbolID string, bid, ask decimal.Decimal) {
	fmt.Printf("\n[spot] %s bid=%s ask=%s\n", symbolID, bid.String(), ask.String())
}

func (printingHandler) OnDepth(symbolID string, book *market.OrderBook) {
	fmt.Printf("\n[depth] %s bids=%d asks=%d\n", symbolID, len(book.Bids()), len(book.Asks()))
}

func (printingHandler) OnDepthUpdate(symbolID string, diffs []message.MDIncrementalEntry) {
	fmt.Printf("\n[depth-update] %s %d changes\n", symbolID, len(diffs))
}

func (printingHandler) OnMarketReject(mdReqID string, reason string) {
	fmt.Printf("\n[market-reject] mdReqID=%s reason=%s\n", mdReqID, reason)
}

func (printingHandler) OnExecution(report message.ExecutionReport) {
	fmt.Printf("\n[execution] clOrdID=%s symbol=%s status=%s cumQty=%s\n", report.ClOrdID, report.Symbol, report.OrdStatus, report.CumQty)
}

func (printingHandler) OnCancelReject(reject message.OrderCancelReject) {
	fmt.Printf("\n[cancel-reject] clOrdID=%s reason=%s\n", reject.ClOrdID, reject.CxlRejReason)
}

func (printingHandler) OnDisconnected(reason string) {
	fmt.Printf("\n[disconnected] %s\n", reason)
}

var (
	_ market.Handler = printingHandler{}
	_ trade.Handler  = printingHandler{}
)

// multiMarketHandler fans a market event out to every handler in order,
// used to attach an optional storage.MarketSink alongside the printer.
type multiMarketHandler []market.Handler

func (m multiMarketHandler) OnSpot(symbolID string, bid, ask decimal.Decimal) {
	for _, h := range m {
		h.OnSpot(symbolID, bid, ask)
	}
}

func (m multiMarketHandler) OnDepth(symbolID string, book *market.OrderBook) {
	for _, h := range m {
		h.OnDepth(symbolID, book)
	}
}

func (m multiMarketHandler) OnDepthUpdate(symbolID string, diffs []message.MDIncrementalEntry) {
	for _, h := range m {
		h.OnDepthUpdate(symbolID, diffs)
	}
}

func (m multiMarketHandler) OnMarketReject(mdReqID string, reason string) {
	for _, h := range m {
		h.OnMarketReject(mdReqID, reason)
	}
}

// multiTradeHandler fans a trade event out to every handler in order, used
// to attach an optional storage.TradeSink alongside the printer.
type multiTradeHandler []trade.Handler

func (m multiTradeHandler) OnExecution(report message.ExecutionReport) {
	for _, h := range m {
		h.OnExecution(report)
	}
}

func (m multiTradeHandler) OnCancelReject(reject message.OrderCancelReject) {
	for _, h := range m {
		h.OnCancelReject(reject)
	}
}

func (m multiTradeHandler) OnDisconnected(reason string) {
	for _, h := range m {
		h.OnDisconnected(reason)
	}
}
