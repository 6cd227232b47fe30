package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RyanGano/skull-king/internal/repository"
	"github.com/RyanGano/skull-king/internal/service"

	"github.com/gin-gonic/gin"
)

type roundJSON struct {
	ID          string `json:"id"`
	MaxBid      int    `json:"maxBid"`
	Bid         *int   `json:"bid"`
	TricksTaken *int   `json:"tricksTaken"`
	Bonus       *int   `json:"bonus"`
}

type playerJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type playerRoundsJSON struct {
	ID     string      `json:"id"`
	Player playerJSON  `json:"player"`
	Rounds []roundJSON `json:"rounds"`
}

type gameJSON struct {
	ID              string             `json:"id"`
	Hash            string             `json:"hash"`
	Status          int                `json:"status"`
	PlayerRoundInfo []playerRoundsJSON `json:"playerRoundInfo"`
	PlayerToken     string             `json:"playerToken"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	games := service.NewGameService(repository.NewMemoryStore(), nil)
	h := NewHandler(games, service.NewTokenIssuer("test-secret"))

	r := gin.New()
	r.POST("/games", h.CreateGame)
	r.GET("/games/getid", h.GetSingleGameID)
	r.GET("/games/:id", h.GetGame)
	r.PUT("/games/:id/players", h.UpsertPlayer)
	r.PUT("/games/:id/players/reorder", h.ReorderPlayers)
	r.DELETE("/games/:id/players/:playerId", h.RemovePlayer)
	r.GET("/games/:id/start", h.StartGame)
	r.GET("/games/:id/movenext", h.MoveToNextPhase)
	r.GET("/games/:id/moveprevious", h.MoveToPreviousPhase)
	r.GET("/games/:id/setbid", h.SetBid)
	r.GET("/games/:id/setscore", h.SetScore)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeGame(t *testing.T, w *httptest.ResponseRecorder) gameJSON {
	t.Helper()
	var g gameJSON
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("decoding game response: %v (%s)", err, w.Body.String())
	}
	return g
}

func createGame(t *testing.T, r *gin.Engine, playerName string) gameJSON {
	t.Helper()
	w := do(t, r, http.MethodPost, "/games", gin.H{"playerName": playerName})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /games = %d (%s)", w.Code, w.Body.String())
	}
	return decodeGame(t, w)
}

func addPlayer(t *testing.T, r *gin.Engine, gameID, name string) playerJSON {
	t.Helper()
	w := do(t, r, http.MethodPut, "/games/"+gameID+"/players", gin.H{"name": name})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT players = %d (%s)", w.Code, w.Body.String())
	}
	var p playerJSON
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	return p
}

func getGame(t *testing.T, r *gin.Engine, gameID string) gameJSON {
	t.Helper()
	w := do(t, r, http.MethodGet, "/games/"+gameID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /games/%s = %d", gameID, w.Code)
	}
	return decodeGame(t, w)
}

func TestCreateGameWithSampleNameHasFixedID(t *testing.T) {
	r := newTestRouter()

	g := createGame(t, r, "__Sample Game 1__")
	if g.ID != "ABCD" {
		t.Errorf("sample game id = %s, want ABCD", g.ID)
	}
	if g.PlayerToken == "" {
		t.Error("no player token issued")
	}
	if g.Status != 0 {
		t.Errorf("status = %d, want 0 (accepting players)", g.Status)
	}

	g = createGame(t, r, "Ryan")
	if g.ID == "ABCD" {
		t.Error("regular game got the sample id")
	}
}

func TestCannotCreateGameWithSameID(t *testing.T) {
	r := newTestRouter()
	createGame(t, r, "__Sample Game 2__")

	w := do(t, r, http.MethodPost, "/games", gin.H{"playerName": "__Sample Game 2__"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestGetGameKnownHashSavesBandwidth(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Ryan")

	w := do(t, r, http.MethodGet, "/games/"+g.ID+"?knownHash="+g.Hash, nil)
	if w.Code != http.StatusNotModified {
		t.Errorf("GET with current hash = %d, want 304", w.Code)
	}

	w = do(t, r, http.MethodGet, "/games/"+g.ID+"?knownHash=outdated", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET with stale hash = %d, want 200", w.Code)
	}
}

func TestGetGameErrors(t *testing.T) {
	r := newTestRouter()

	if w := do(t, r, http.MethodGet, "/games/ZZZZ", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown game = %d, want 404", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/games/a%23", nil); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id = %d, want 400", w.Code)
	}
}

func TestGetGameNormalizesRawID(t *testing.T) {
	r := newTestRouter()
	createGame(t, r, "__Sample Game 2__") // id 1234

	g := getGame(t, r, "I234")
	if g.ID != "1234" {
		t.Errorf("normalized lookup returned %s, want 1234", g.ID)
	}
}

func TestAddAndRenamePlayer(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Tester")

	p := addPlayer(t, r, g.ID, "Player 2")
	if p.Name != "Player 2" || p.ID == "" {
		t.Fatalf("added player = %+v", p)
	}

	w := do(t, r, http.MethodPut, "/games/"+g.ID+"/players", gin.H{"id": p.ID, "name": "Updated Name"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename = %d (%s)", w.Code, w.Body.String())
	}

	game := getGame(t, r, g.ID)
	if game.PlayerRoundInfo[1].Player.Name != "Updated Name" {
		t.Errorf("player name = %s, want Updated Name", game.PlayerRoundInfo[1].Player.Name)
	}
	if game.PlayerRoundInfo[1].Player.ID != p.ID {
		t.Error("rename changed the player id")
	}
}

func TestCannotAddNinthPlayer(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	for i := 2; i <= 8; i++ {
		addPlayer(t, r, g.ID, fmt.Sprintf("Player %d", i))
	}

	w := do(t, r, http.MethodPut, "/games/"+g.ID+"/players", gin.H{"name": "Player 9"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("9th player = %d, want 400", w.Code)
	}
}

func TestRemovePlayer(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	p := addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)
	founder := game.PlayerRoundInfo[0].Player.ID

	// only the controlling player may remove
	w := do(t, r, http.MethodDelete,
		fmt.Sprintf("/games/%s/players/%s?playerId=%s&knownHash=%s", g.ID, founder, p.ID, game.Hash), nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("remove by non-controller = %d, want 401", w.Code)
	}

	// the founder cannot be removed
	w = do(t, r, http.MethodDelete,
		fmt.Sprintf("/games/%s/players/%s?playerId=%s&knownHash=%s", g.ID, founder, founder, game.Hash), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("remove founder = %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodDelete,
		fmt.Sprintf("/games/%s/players/%s?playerId=%s&knownHash=%s", g.ID, p.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove = %d (%s)", w.Code, w.Body.String())
	}
	if got := decodeGame(t, w); len(got.PlayerRoundInfo) != 1 {
		t.Errorf("roster size after removal = %d, want 1", len(got.PlayerRoundInfo))
	}
}

func TestReorderPlayers(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	for i := 2; i <= 4; i++ {
		addPlayer(t, r, g.ID, fmt.Sprintf("Player %d", i))
	}
	game := getGame(t, r, g.ID)

	ids := make([]string, len(game.PlayerRoundInfo))
	for i, info := range game.PlayerRoundInfo {
		ids[i] = info.Player.ID
	}

	newOrder := []string{ids[0], ids[3], ids[1], ids[2]}
	w := do(t, r, http.MethodPut, "/games/"+g.ID+"/players/reorder", gin.H{
		"playerOrder": newOrder,
		"playerId":    ids[0],
		"knownHash":   game.Hash,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder = %d (%s)", w.Code, w.Body.String())
	}

	got := decodeGame(t, w)
	for i, want := range newOrder {
		if got.PlayerRoundInfo[i].Player.ID != want {
			t.Fatalf("order[%d] = %s, want %s", i, got.PlayerRoundInfo[i].Player.ID, want)
		}
	}

	// a truncated order is a malformed request, not a missing resource
	w = do(t, r, http.MethodPut, "/games/"+g.ID+"/players/reorder", gin.H{
		"playerOrder": newOrder[:2],
		"playerId":    ids[0],
		"knownHash":   got.Hash,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("truncated reorder = %d, want 400", w.Code)
	}
}

func TestOnlyControllingPlayerCanStart(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	p := addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)

	w := do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s", g.ID, p.ID, game.Hash), nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("start by non-controller = %d, want 401", w.Code)
	}

	founder := game.PlayerRoundInfo[0].Player.ID
	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start = %d (%s)", w.Code, w.Body.String())
	}

	got := decodeGame(t, w)
	if got.Status != 1 {
		t.Errorf("status = %d, want 1 (bidding open)", got.Status)
	}
	for _, info := range got.PlayerRoundInfo {
		if len(info.Rounds) != 1 || info.Rounds[0].MaxBid != 1 {
			t.Errorf("player %s rounds = %+v, want one round of maxBid 1", info.Player.Name, info.Rounds)
		}
	}
}

func TestStartWithStaleHashFails(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)
	founder := game.PlayerRoundInfo[0].Player.ID

	w := do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s", g.ID, founder, g.Hash), nil)
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("start with stale hash = %d, want 412", w.Code)
	}
}

func TestBidAndScoreFlow(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	p := addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)
	founder := game.PlayerRoundInfo[0].Player.ID

	w := do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}
	game = decodeGame(t, w)

	// second player bids 1
	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/setbid?playerId=%s&bid=1&knownHash=%s", g.ID, p.ID, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("setbid = %d (%s)", w.Code, w.Body.String())
	}
	game = decodeGame(t, w)
	if game.PlayerRoundInfo[0].Rounds[0].Bid != nil {
		t.Error("first player's bid was touched")
	}
	if bid := game.PlayerRoundInfo[1].Rounds[0].Bid; bid == nil || *bid != 1 {
		t.Errorf("second player's bid = %v, want 1", bid)
	}

	// close bidding
	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/movenext?playerId=%s&knownHash=%s", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}
	game = decodeGame(t, w)
	if game.Status != 2 {
		t.Fatalf("status = %d, want 2 (bidding closed)", game.Status)
	}

	// second player takes their trick
	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/setscore?playerId=%s&trickstaken=1&bonus=0&knownHash=%s", g.ID, p.ID, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("setscore = %d (%s)", w.Code, w.Body.String())
	}
	game = decodeGame(t, w)
	if tricks := game.PlayerRoundInfo[1].Rounds[0].TricksTaken; tricks == nil || *tricks != 1 {
		t.Errorf("tricks taken = %v, want 1", tricks)
	}

	// undo back to open bidding
	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/moveprevious?playerId=%s&knownHash=%s", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}
	if game = decodeGame(t, w); game.Status != 1 {
		t.Errorf("status after undo = %d, want 1", game.Status)
	}
}

func TestStartInRandomBidMode(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)
	founder := game.PlayerRoundInfo[0].Player.ID

	w := do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s&randomBidMode=true&gameDifficulty=0", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("random start = %d (%s)", w.Code, w.Body.String())
	}

	game = decodeGame(t, w)
	if game.Status != 2 {
		t.Errorf("status = %d, want 2 (bids pre-applied)", game.Status)
	}
	if len(game.PlayerRoundInfo) != 3 {
		t.Errorf("roster = %d players, want 3 (ghost added)", len(game.PlayerRoundInfo))
	}
	total := 0
	for _, info := range game.PlayerRoundInfo {
		if info.Rounds[0].Bid == nil {
			t.Fatal("missing generated bid")
		}
		total += *info.Rounds[0].Bid
	}
	if total != 1 {
		t.Errorf("easy-mode bid total = %d, want deal size 1", total)
	}
}

func TestStartRejectsMalformedQueryParams(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)
	founder := game.PlayerRoundInfo[0].Player.ID

	w := do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s&randomBidMode=banana", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unparseable randomBidMode = %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodGet,
		fmt.Sprintf("/games/%s/start?playerId=%s&knownHash=%s&gameDifficulty=7", g.ID, founder, game.Hash), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range gameDifficulty = %d, want 400", w.Code)
	}

	if game = getGame(t, r, g.ID); game.Status != 0 {
		t.Errorf("status after rejected starts = %d, want 0", game.Status)
	}
}

func TestPlayerTokenAuthorizesActions(t *testing.T) {
	r := newTestRouter()
	g := createGame(t, r, "Player 1")
	addPlayer(t, r, g.ID, "Player 2")
	game := getGame(t, r, g.ID)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/games/%s/start?knownHash=%s", g.ID, game.Hash), nil)
	req.Header.Set("Authorization", "Bearer "+g.PlayerToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("start via bearer token = %d (%s)", w.Code, w.Body.String())
	}
}

func TestGetSingleGameID(t *testing.T) {
	r := newTestRouter()

	if w := do(t, r, http.MethodGet, "/games/getid", nil); w.Code != http.StatusNoContent {
		t.Errorf("getid on empty store = %d, want 204", w.Code)
	}

	g := createGame(t, r, "Player 1")
	w := do(t, r, http.MethodGet, "/games/getid", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("getid = %d", w.Code)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != g.ID {
		t.Errorf("getid = %s, want %s", resp.ID, g.ID)
	}

	createGame(t, r, "Player 1a")
	if w := do(t, r, http.MethodGet, "/games/getid", nil); w.Code != http.StatusNoContent {
		t.Errorf("getid with two games = %d, want 204", w.Code)
	}
}
