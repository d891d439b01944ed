package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// smoke 对已启动的 web/admin 服务跑一遍下单到收货的完整流程
func main() {
	webURL := flag.String("web", "http://localhost:8080", "前台服务地址")
	adminURL := flag.String("admin", "http://localhost:8081", "后台服务地址")
	username := flag.String("user", "smoke", "测试用户名")
	password := flag.String("password", "smoke123", "测试用户密码")
	adminUser := flag.String("admin-user", "", "管理员用户名，为空时跳过后台检查")
	adminPassword := flag.String("admin-password", "", "管理员密码")
	flag.Parse()

	c := &client{http: &http.Client{Timeout: 5 * time.Second}}
	if err := run(c, *webURL, *adminURL, *username, *password, *adminUser, *adminPassword); err != nil {
		fmt.Printf("\n失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n==========================================")
	fmt.Println("测试完成！")
	fmt.Println("==========================================")
}

func run(c *client, webURL, adminURL, username, password, adminUser, adminPassword string) error {
	fmt.Println("1. 注册用户...")
	status, _, err := c.do(http.MethodPost, webURL+"/api/register", "", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return err
	}
	if status == http.StatusConflict {
		fmt.Println("   用户已存在，直接登录")
	}

	fmt.Println("\n2. 登录获取token...")
	token, err := c.login(webURL, username, password)
	if err != nil {
		return err
	}

	fmt.Println("\n3. 查询图书目录...")
	var page struct {
		Items []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
			Stock int64  `json:"stock"`
		} `json:"items"`
	}
	if err := c.expect(http.MethodGet, webURL+"/api/books?page_size=50", "", nil, &page); err != nil {
		return err
	}
	var bookID int64
	for _, b := range page.Items {
		if b.Stock > 0 {
			bookID = b.ID
			fmt.Printf("   选中 #%d %s (库存 %d)\n", b.ID, b.Title, b.Stock)
			break
		}
	}
	if bookID == 0 {
		return fmt.Errorf("no book in stock, run `bookctl seed` first")
	}

	fmt.Println("\n4. 加入购物车并下单...")
	if err := c.expect(http.MethodPost, webURL+"/api/cart", token, map[string]any{"book_id": bookID, "quantity": 1}, nil); err != nil {
		return err
	}
	var o struct {
		ID      int64  `json:"id"`
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
		Total   string `json:"total"`
	}
	if err := c.expect(http.MethodPost, webURL+"/api/orders", token, map[string]string{"address": "smoke test", "phone": "000"}, &o); err != nil {
		return err
	}
	fmt.Printf("   订单 %s 状态 %s 金额 %s\n", o.OrderNo, o.Status, o.Total)

	fmt.Println("\n5. 确认收货（重复两次验证幂等）...")
	for i := 0; i < 2; i++ {
		if err := c.expect(http.MethodPost, fmt.Sprintf("%s/api/orders/%d/receive", webURL, o.ID), token, nil, &o); err != nil {
			return err
		}
		fmt.Printf("   第 %d 次: %s\n", i+1, o.Status)
	}
	status, msg, err := c.do(http.MethodPost, fmt.Sprintf("%s/api/orders/%d/cancel", webURL, o.ID), token, nil, nil)
	if err != nil {
		return err
	}
	fmt.Printf("   取消已完成订单: HTTP %d %s\n", status, msg)

	fmt.Println("\n6. 测试下单限流...")
	limited := 0
	for i := 0; i < 10; i++ {
		status, _, err := c.do(http.MethodPost, webURL+"/api/orders", token, nil, nil)
		if err != nil {
			return err
		}
		if status == http.StatusTooManyRequests {
			limited++
		}
	}
	fmt.Printf("   10 次请求中被限流 %d 次\n", limited)

	if adminUser == "" {
		return nil
	}
	fmt.Println("\n7. 后台监控数据...")
	adminToken, err := c.login(adminURL, adminUser, adminPassword)
	if err != nil {
		return err
	}
	var stats map[string]any
	if err := c.expect(http.MethodGet, adminURL+"/api/monitor/stats", adminToken, nil, &stats); err != nil {
		return err
	}
	fmt.Printf("   %v\n", stats)
	return nil
}

type client struct {
	http *http.Client
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *client) login(baseURL, username, password string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	if err := c.expect(http.MethodPost, baseURL+"/api/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &data); err != nil {
		return "", err
	}
	return "Bearer " + data.Token, nil
}

// expect 要求 2xx 响应，并把 data 解析到 out
func (c *client) expect(method, url, token string, body, out any) error {
	status, msg, err := c.do(method, url, token, body, out)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("%s %s: HTTP %d %s", method, url, status, msg)
	}
	return nil
}

func (c *client) do(method, url, token string, body, out any) (int, string, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, "", err
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return resp.StatusCode, string(bodyBytes), nil
	}
	if out != nil && resp.StatusCode < 300 && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("JSON解析失败: %v, 响应: %s", err, string(bodyBytes))
		}
	}
	return resp.StatusCode, env.Msg, nil
}
