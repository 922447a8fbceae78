package embed

import (
	"bytes"
	"encoding/json"
	"strings"
	texttemplate "text/template"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

// Literal strings the widget shows when the backend cannot answer.
const (
	widgetNoAnswerMessage = "No response received."
	widgetErrorMessage    = "Sorry, something went wrong. Please try again."
)

// widgetData carries values into the script template. Dynamic strings are
// pre-rendered as JSON literals (see jsString) so nothing user-controlled
// can escape a script string; theme values come validated from ResolveTheme.
type widgetData struct {
	BotID       string // JSON literal
	BotName     string // JSON literal
	Initial     string // JSON literal
	TenantID    string // JSON literal
	Welcome     string // JSON literal
	AskURL      string // JSON literal
	NoAnswer    string // JSON literal
	ErrFallback string // JSON literal
	T           ResolvedTheme
	PosRule     string // "left: 20px;" or "right: 20px;"
	AlignRule   string // "left: 0;" or "right: 0;"
}

// RenderWidget produces the self-contained widget script for a deployed bot.
// All configuration is baked into the script at generation time; the script
// must be re-fetched after the bot or its theme changes.
func RenderWidget(bot domain.Bot, theme domain.Theme, tenantID, apiBase string) (string, error) {
	resolved := ResolveTheme(theme)
	posRule, alignRule := "right: 20px;", "right: 0;"
	if resolved.Position == domain.PositionBottomLeft {
		posRule, alignRule = "left: 20px;", "left: 0;"
	}
	data := widgetData{
		BotID:       jsString(bot.ID),
		BotName:     jsString(bot.Name),
		Initial:     jsString(nameInitial(bot.Name)),
		TenantID:    jsString(tenantID),
		Welcome:     jsString(WelcomeMessage(bot.Config)),
		AskURL:      jsString(strings.TrimRight(apiBase, "/") + "/chat/ask"),
		NoAnswer:    jsString(widgetNoAnswerMessage),
		ErrFallback: jsString(widgetErrorMessage),
		T:           resolved,
		PosRule:     posRule,
		AlignRule:   alignRule,
	}
	var sb strings.Builder
	if err := widgetTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// jsString renders a value as a JSON literal safe to embed in script text.
// HTML-significant characters are escaped so a hostile value cannot inject
// a closing script tag into pages that inline the output.
func jsString(v string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		// Encoding a plain string cannot fail; keep the script valid anyway.
		return `""`
	}
	return strings.TrimRight(buf.String(), "\n")
}

var widgetTemplate = texttemplate.Must(texttemplate.New("widget").Parse(widgetScriptTemplate))

const widgetScriptTemplate = `(function() {
  'use strict';
  if (window.ChatAdminWidget) return;

  var botId = {{.BotID}};
  var botName = {{.BotName}};
  var tenantId = {{.TenantID}};
  var welcomeMessage = {{.Welcome}};
  var askUrl = {{.AskURL}};

  var isOpen = false;
  var hasInteracted = false;

  function createWidget() {
    var widgetHTML = ` + "`" + `
      <div id="ca-widget" style="
        position: fixed;
        bottom: 20px;
        {{.PosRule}}
        z-index: 999999;
        font-family: {{.T.FontFamily}};
      ">
        <div id="ca-launcher-wrapper" style="position: relative;">
          <div id="ca-badge" style="
            position: absolute;
            top: -2px;
            right: -2px;
            width: 14px;
            height: 14px;
            background: #ef4444;
            border-radius: 50%;
            border: 2px solid #ffffff;
            opacity: 0;
            transform: scale(0);
            transition: all 0.3s ease;
            z-index: 2;
          "></div>
          <div id="ca-launcher" style="
            width: 64px;
            height: 64px;
            background: linear-gradient(135deg, {{.T.Primary}}, {{.T.GradientEnd}});
            border-radius: 50%;
            cursor: pointer;
            display: flex;
            align-items: center;
            justify-content: center;
            box-shadow: 0 4px 20px rgba(0,0,0,0.15), 0 8px 40px rgba(102, 126, 234, 0.25);
            transition: all 0.4s cubic-bezier(0.4, 0, 0.2, 1);
            position: relative;
            overflow: hidden;
          ">
            <svg id="ca-chat-icon" width="28" height="28" fill="{{.T.UserText}}" viewBox="0 0 24 24" style="transition: all 0.3s ease; position: relative; z-index: 1;">
              <path d="M20 2H4c-1.1 0-2 .9-2 2v18l4-4h14c1.1 0 2-.9 2-2V4c0-1.1-.9-2-2-2zm0 14H6l-2 2V4h16v12z"/>
              <circle cx="12" cy="11" r="1"/>
              <circle cx="8" cy="11" r="1"/>
              <circle cx="16" cy="11" r="1"/>
            </svg>
            <svg id="ca-close-icon" width="24" height="24" fill="{{.T.UserText}}" viewBox="0 0 24 24" style="display: none; transition: all 0.3s ease; position: absolute; z-index: 1;">
              <path stroke="{{.T.UserText}}" stroke-width="2" stroke-linecap="round" d="M18 6L6 18M6 6l12 12"/>
            </svg>
          </div>
        </div>

        <div id="ca-panel" style="
          position: absolute;
          bottom: 84px;
          {{.AlignRule}}
          width: {{.T.Width}};
          max-width: calc(100vw - 40px);
          height: {{.T.Height}};
          max-height: calc(100vh - 120px);
          background: {{.T.Surface}};
          border-radius: {{.T.Radius}};
          box-shadow: 0 8px 32px rgba(0,0,0,0.12), 0 20px 60px rgba(0,0,0,0.08);
          transform: translateY(20px) scale(0.95);
          opacity: 0;
          pointer-events: none;
          display: flex;
          flex-direction: column;
          overflow: hidden;
          transition: all 0.4s cubic-bezier(0.4, 0, 0.2, 1);
          backdrop-filter: blur(10px);
        ">
          <div style="
            background: linear-gradient(135deg, {{.T.Primary}}, {{.T.GradientEnd}});
            color: {{.T.UserText}};
            padding: 20px 24px;
            display: flex;
            align-items: center;
            justify-content: space-between;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
          ">
            <div style="display: flex; align-items: center; gap: 12px;">
              <div id="ca-avatar" style="
                width: 40px;
                height: 40px;
                background: rgba(255,255,255,0.2);
                backdrop-filter: blur(10px);
                border-radius: 50%;
                display: flex;
                align-items: center;
                justify-content: center;
                font-weight: 700;
                font-size: 16px;
              "></div>
              <div>
                <h3 id="ca-bot-name" style="margin: 0; font-size: 16px; font-weight: 600; letter-spacing: -0.2px;"></h3>
                <div style="display: flex; align-items: center; gap: 6px; margin-top: 2px;">
                  <span style="
                    width: 6px;
                    height: 6px;
                    background: #4ade80;
                    border-radius: 50%;
                    display: inline-block;
                    animation: ca-pulse-dot 2s infinite;
                  "></span>
                  <p style="margin: 0; font-size: 12px; opacity: 0.9;">Online</p>
                </div>
              </div>
            </div>
            <button id="ca-minimize" style="
              background: rgba(255,255,255,0.15);
              backdrop-filter: blur(10px);
              border: none;
              color: {{.T.UserText}};
              cursor: pointer;
              width: 32px;
              height: 32px;
              border-radius: 8px;
              display: flex;
              align-items: center;
              justify-content: center;
              transition: all 0.2s ease;
            ">
              <svg width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round">
                <path d="M19 9l-7 7-7-7"/>
              </svg>
            </button>
          </div>

          <div id="ca-messages" style="
            flex: 1;
            padding: 20px;
            overflow-y: auto;
            display: flex;
            flex-direction: column;
            gap: 14px;
            scroll-behavior: smooth;
            background: {{.T.Canvas}};
          "></div>

          <div style="
            padding: 16px 20px 20px;
            background: {{.T.Surface}};
            border-top: 1px solid rgba(0,0,0,0.06);
          ">
            <div style="
              display: flex;
              gap: 10px;
              align-items: flex-end;
              background: {{.T.InputWell}};
              padding: 8px;
              border-radius: 24px;
              transition: all 0.3s ease;
              box-shadow: 0 2px 8px rgba(0,0,0,0.04);
            ">
              <textarea id="ca-input" placeholder="Type your message..." style="
                flex: 1;
                padding: 10px 16px;
                border: none;
                border-radius: 18px;
                outline: none;
                font-size: {{.T.FontSize}};
                font-family: inherit;
                background: transparent;
                color: {{.T.BotText}};
                resize: none;
                max-height: 120px;
                line-height: 1.5;
              " rows="1"></textarea>
              <button id="ca-send" style="
                background: linear-gradient(135deg, {{.T.Primary}}, {{.T.GradientEnd}});
                color: {{.T.UserText}};
                border: none;
                width: 40px;
                height: 40px;
                border-radius: 50%;
                cursor: pointer;
                transition: all 0.3s ease;
                display: flex;
                align-items: center;
                justify-content: center;
                box-shadow: 0 4px 12px rgba(102, 126, 234, 0.3);
              ">
                <svg width="18" height="18" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round">
                  <path d="M22 2L11 13M22 2l-7 20-4-9-9-4 20-7z"/>
                </svg>
              </button>
            </div>
            <div style="
              margin-top: 8px;
              font-size: 11px;
              color: rgba(0,0,0,0.4);
              text-align: center;
            ">Powered by AI &#8226; Press Enter to send</div>
          </div>
        </div>
      </div>

      <style>
        @keyframes ca-pulse-dot {
          0%, 100% {
            transform: scale(1);
            opacity: 1;
            box-shadow: 0 0 0 0 rgba(16, 185, 129, 0.7);
          }
          50% {
            transform: scale(1.1);
            opacity: 0.8;
            box-shadow: 0 0 0 4px rgba(16, 185, 129, 0);
          }
        }

        .ca-message {
          max-width: 75%;
          padding: 12px 16px;
          border-radius: 16px;
          word-wrap: break-word;
          font-size: {{.T.FontSize}};
          line-height: 1.5;
          animation: ca-slide-in 0.4s cubic-bezier(0.4, 0, 0.2, 1) forwards;
          position: relative;
          box-shadow: 0 2px 8px rgba(0,0,0,0.05);
        }

        .ca-user-message {
          background: linear-gradient(135deg, {{.T.Primary}}, {{.T.BubbleEnd}});
          color: {{.T.UserText}};
          align-self: flex-end;
          border-bottom-right-radius: 4px;
          box-shadow: 0 2px 12px rgba(102, 126, 234, 0.2);
        }

        .ca-bot-message {
          background: {{.T.Bubble}};
          color: {{.T.BotText}};
          align-self: flex-start;
          border-bottom-left-radius: 4px;
          border: 1px solid rgba(0,0,0,0.06);
        }

        .ca-typing {
          display: flex;
          gap: 4px;
          align-items: center;
          background: {{.T.Bubble}};
          color: {{.T.BotText}};
          width: 60px;
          height: 40px;
          justify-content: center;
          border: 1px solid rgba(0,0,0,0.06);
        }

        .ca-typing .dot {
          width: 8px;
          height: 8px;
          background: {{.T.Primary}};
          border-radius: 50%;
          animation: ca-bounce 1.4s infinite ease-in-out both;
        }

        .ca-typing .dot:nth-child(1) { animation-delay: -0.32s; }
        .ca-typing .dot:nth-child(2) { animation-delay: -0.16s; }

        @keyframes ca-bounce {
          0%, 80%, 100% { transform: translateY(0); }
          40% { transform: translateY(-8px); }
        }

        @keyframes ca-slide-in {
          from { opacity: 0; transform: translateY(15px) scale(0.95); }
          to { opacity: 1; transform: translateY(0) scale(1); }
        }

        #ca-messages::-webkit-scrollbar {
          width: 6px;
        }

        #ca-messages::-webkit-scrollbar-track {
          background: transparent;
        }

        #ca-messages::-webkit-scrollbar-thumb {
          background: rgba(0,0,0,0.2);
          border-radius: 10px;
        }

        #ca-launcher:hover {
          transform: scale(1.08) translateY(-2px);
          box-shadow: 0 6px 24px rgba(0,0,0,0.2), 0 12px 48px rgba(102, 126, 234, 0.35);
        }

        #ca-send:hover:not(:disabled) {
          transform: scale(1.1) rotate(5deg);
          box-shadow: 0 6px 16px rgba(102, 126, 234, 0.4);
        }

        #ca-send:disabled {
          opacity: 0.5;
          cursor: not-allowed;
        }

        #ca-minimize:hover {
          background: rgba(255,255,255,0.25);
          transform: scale(1.05);
        }

        @media (max-width: 480px) {
          #ca-panel {
            width: calc(100vw - 20px) !important;
            height: calc(100vh - 100px) !important;
            bottom: 10px !important;
            left: 10px !important;
            right: 10px !important;
            border-radius: 12px !important;
          }
        }
      </style>
    ` + "`" + `;

    document.body.insertAdjacentHTML('beforeend', widgetHTML);

    // Name and avatar go through textContent, never into markup.
    document.getElementById('ca-bot-name').textContent = botName;
    document.getElementById('ca-avatar').textContent = {{.Initial}};

    var launcher = document.getElementById('ca-launcher');
    var minimizeBtn = document.getElementById('ca-minimize');
    var sendBtn = document.getElementById('ca-send');
    var input = document.getElementById('ca-input');

    launcher.addEventListener('click', toggleChat);
    minimizeBtn.addEventListener('click', closeChat);
    sendBtn.addEventListener('click', sendMessage);

    input.addEventListener('keydown', function(e) {
      if (e.key === 'Enter' && !e.shiftKey) {
        e.preventDefault();
        sendMessage();
      }
    });

    input.addEventListener('input', autoResize);

    setTimeout(function() {
      addMessage(welcomeMessage, false, true);
      if (!hasInteracted) {
        showBadge();
      }
    }, 800);
  }

  function autoResize() {
    var input = document.getElementById('ca-input');
    input.style.height = 'auto';
    input.style.height = Math.min(input.scrollHeight, 120) + 'px';
  }

  function showBadge() {
    var badge = document.getElementById('ca-badge');
    if (badge && !isOpen) {
      badge.style.opacity = '1';
      badge.style.transform = 'scale(1)';
    }
  }

  function hideBadge() {
    var badge = document.getElementById('ca-badge');
    if (badge) {
      badge.style.opacity = '0';
      badge.style.transform = 'scale(0)';
    }
  }

  function openChat() {
    if (!isOpen) toggleChat();
  }

  function toggleChat() {
    var panel = document.getElementById('ca-panel');
    var chatIcon = document.getElementById('ca-chat-icon');
    var closeIcon = document.getElementById('ca-close-icon');

    isOpen = !isOpen;
    hasInteracted = true;
    hideBadge();

    if (isOpen) {
      panel.style.opacity = '1';
      panel.style.pointerEvents = 'auto';
      panel.style.transform = 'translateY(0) scale(1)';
      chatIcon.style.display = 'none';
      closeIcon.style.display = 'block';
      document.getElementById('ca-input').focus();
    } else {
      panel.style.opacity = '0';
      panel.style.pointerEvents = 'none';
      panel.style.transform = 'translateY(20px) scale(0.95)';
      chatIcon.style.display = 'block';
      closeIcon.style.display = 'none';
    }
  }

  function closeChat() {
    var panel = document.getElementById('ca-panel');
    var chatIcon = document.getElementById('ca-chat-icon');
    var closeIcon = document.getElementById('ca-close-icon');

    panel.style.opacity = '0';
    panel.style.pointerEvents = 'none';
    panel.style.transform = 'translateY(20px) scale(0.95)';
    chatIcon.style.display = 'block';
    closeIcon.style.display = 'none';
    isOpen = false;
  }

  function addMessage(text, isUser, isWelcome) {
    var messagesContainer = document.getElementById('ca-messages');
    var messageDiv = document.createElement('div');
    messageDiv.className = 'ca-message ' + (isUser ? 'ca-user-message' : 'ca-bot-message');
    messageDiv.textContent = text;
    messagesContainer.appendChild(messageDiv);
    messagesContainer.scrollTop = messagesContainer.scrollHeight;

    if (!isUser && !isWelcome && !hasInteracted) {
      showBadge();
    }
  }

  function sendMessage() {
    var input = document.getElementById('ca-input');
    var sendBtn = document.getElementById('ca-send');
    var message = input.value.trim();
    if (!message) return;

    input.value = '';
    input.style.height = 'auto';
    sendBtn.disabled = true;
    addMessage(message, true, false);

    var messagesContainer = document.getElementById('ca-messages');
    var typingDiv = document.createElement('div');
    typingDiv.className = 'ca-message ca-typing';
    typingDiv.innerHTML = '<span class="dot"></span><span class="dot"></span><span class="dot"></span>';
    messagesContainer.appendChild(typingDiv);
    messagesContainer.scrollTop = messagesContainer.scrollHeight;

    fetch(askUrl, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ question: message, tenant_id: tenantId })
    })
      .then(function(response) { return response.json(); })
      .then(function(data) {
        typingDiv.remove();
        addMessage(data.answer || data.detail || {{.NoAnswer}}, false, false);
      })
      .catch(function() {
        typingDiv.remove();
        addMessage({{.ErrFallback}}, false, false);
      })
      .finally(function() {
        sendBtn.disabled = false;
        input.focus();
      });
  }

  if (document.readyState === 'loading')
    document.addEventListener('DOMContentLoaded', createWidget);
  else createWidget();

  window.ChatAdminWidget = { botId: botId, open: openChat, close: closeChat, toggle: toggleChat };
})();
`
