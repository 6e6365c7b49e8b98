package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: JiShi 通讯员 <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		err := smtp.SendMail(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("❌ Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("✅ Email sent to %v: %s", to, subject)
		}
	}()
}

var replyMailTmpl = template.Must(template.New("reply").Parse(`
<p>{{.Actor}} 回复了您在《{{.Title}}》下的评论：</p>
<blockquote>{{.Content}}</blockquote>
<p><a href="{{.Link}}">点击查看</a></p>
`))

var receiptMailTmpl = template.Must(template.New("receipt").Parse(`
<p>您的订单 <strong>{{.Oid}}</strong> 已支付成功。</p>
<p>{{.Title}} — {{.Amount}}</p>
<p>感谢在集市购物！</p>
`))

// SendReplyNotification 评论被回复的邮件提醒
func (s *MailService) SendReplyNotification(to, actorName, threadTitle, content, link string) {
	var buf bytes.Buffer
	err := replyMailTmpl.Execute(&buf, map[string]string{
		"Actor":   actorName,
		"Title":   threadTitle,
		"Content": content,
		"Link":    link,
	})
	if err != nil {
		log.Printf("Failed to render reply mail: %v", err)
		return
	}
	s.sendAsync([]string{to}, "您的评论收到了新回复", buf.String())
}

// SendOrderReceipt 订单支付成功回执
func (s *MailService) SendOrderReceipt(to, listingTitle string, amountCents int64, currency, oid string) {
	amount := fmt.Sprintf("%.2f %s", float64(amountCents)/100, strings.ToUpper(currency))
	var buf bytes.Buffer
	err := receiptMailTmpl.Execute(&buf, map[string]string{
		"Oid":    oid,
		"Title":  listingTitle,
		"Amount": amount,
	})
	if err != nil {
		log.Printf("Failed to render receipt mail: %v", err)
		return
	}
	s.sendAsync([]string{to}, "订单支付成功 - "+oid, buf.String())
}

// SendWelcomeEmail 注册激活码
func (s *MailService) SendWelcomeEmail(to, code string) {
	body := fmt.Sprintf("<p>欢迎来到集市！您的激活码是 <strong>%s</strong>。</p>", code)
	s.sendAsync([]string{to}, "欢迎来到集市 - 激活您的账号", body)
}
