package chat

const (
	SystemPrompt = "Você é QuantumX, um assistente super inteligente, claro e amigável. " +
		"Responda em português com precisão e objetividade."

	EmptyCompletionMessage = "Desculpe, não consegui responder agora."
	EmptyMessage           = "Mensagem vazia. Digite algo para continuar."

	ImageNotConfiguredMessage = "Para gerar imagens, configure `OPENAI_API_KEY` no ambiente/.env. " +
		"Exemplo: cp .env.example .env"
	ImageEmptyMessage   = "Não consegui gerar imagem agora. Tente novamente."
	ImageSuccessMessage = "Imagem criada com sucesso!"
	ImageFailedMessage  = "Falha ao gerar imagem no momento. Tente com outro prompt."
)
