package main

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	blake2b "github.com/minio/blake2b-simd"
	"github.com/mitchellh/go-homedir"

	"github.com/RustCrypto/stream-ciphers-sub000/cfb"
	"github.com/RustCrypto/stream-ciphers-sub000/cfb8"
	"github.com/RustCrypto/stream-ciphers-sub000/chacha20"
	"github.com/RustCrypto/stream-ciphers-sub000/ctr"
	"github.com/RustCrypto/stream-ciphers-sub000/hc128"
	"github.com/RustCrypto/stream-ciphers-sub000/hc256"
	"github.com/RustCrypto/stream-ciphers-sub000/ofb"
	"github.com/RustCrypto/stream-ciphers-sub000/rabbit"
	"github.com/RustCrypto/stream-ciphers-sub000/rc4"
	"github.com/RustCrypto/stream-ciphers-sub000/salsa20"
)

type tomlConfig struct {
	Cipher string
	Key    string
	Nonce  string
}

// Conf - Shared config
type Conf struct {
	Cipher  string
	Key     []byte
	Nonce   []byte
	Seek    uint64
	Decrypt bool
}

// seeker is implemented by the streams that support byte-precise seeking.
type seeker interface {
	Seek(offset uint64) error
}

func newStream(conf Conf) (cipher.Stream, error) {
	switch conf.Cipher {
	case "chacha20", "xchacha20":
		return chacha20.New(conf.Key, conf.Nonce)
	case "chacha12":
		return chacha20.NewWithRounds(conf.Key, conf.Nonce, 12)
	case "chacha8":
		return chacha20.NewWithRounds(conf.Key, conf.Nonce, 8)
	case "salsa20", "xsalsa20":
		return salsa20.New(conf.Key, conf.Nonce)
	case "salsa12":
		return salsa20.NewWithRounds(conf.Key, conf.Nonce, 12)
	case "salsa8":
		return salsa20.NewWithRounds(conf.Key, conf.Nonce, 8)
	case "rc4":
		return rc4.New(conf.Key)
	case "rabbit":
		if len(conf.Nonce) == 0 {
			return rabbit.New(conf.Key)
		}
		return rabbit.NewWithIV(conf.Key, conf.Nonce)
	case "hc128":
		return hc128.New(conf.Key, conf.Nonce)
	case "hc256":
		return hc256.New(conf.Key, conf.Nonce)
	case "aes-ctr":
		block, err := aes.NewCipher(conf.Key)
		if err != nil {
			return nil, err
		}
		return ctr.New(block, conf.Nonce)
	case "aes-ofb":
		block, err := aes.NewCipher(conf.Key)
		if err != nil {
			return nil, err
		}
		return ofb.New(block, conf.Nonce)
	case "aes-cfb":
		block, err := aes.NewCipher(conf.Key)
		if err != nil {
			return nil, err
		}
		if conf.Decrypt {
			return cfb.NewDecrypter(block, conf.Nonce)
		}
		return cfb.NewEncrypter(block, conf.Nonce)
	case "aes-cfb8":
		block, err := aes.NewCipher(conf.Key)
		if err != nil {
			return nil, err
		}
		if conf.Decrypt {
			return cfb8.NewDecrypter(block, conf.Nonce)
		}
		return cfb8.NewEncrypter(block, conf.Nonce)
	}
	return nil, fmt.Errorf("unknown cipher %q", conf.Cipher)
}

func run(conf Conf, withDigest bool) {
	stream, err := newStream(conf)
	if err != nil {
		log.Fatal(err)
	}
	if conf.Seek > 0 {
		s, ok := stream.(seeker)
		if !ok {
			log.Fatalf("cipher %q does not support seeking", conf.Cipher)
		}
		if err := s.Seek(conf.Seek); err != nil {
			log.Fatal(err)
		}
	}

	var hf io.Writer
	if withDigest {
		h, err := blake2b.New(&blake2b.Config{Size: 32})
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			fmt.Fprintf(os.Stderr, "BLAKE2b-256: %s\n", hex.EncodeToString(h.Sum(nil)))
		}()
		hf = h
	}

	reader := bufio.NewReader(os.Stdin)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	buf := make([]byte, 65536)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			stream.XORKeyStream(chunk, chunk)
			if _, werr := writer.Write(chunk); werr != nil {
				log.Fatal(werr)
			}
			if hf != nil {
				hf.Write(chunk)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
}

func expandConfigFile(path string) string {
	file, err := homedir.Expand(path)
	if err != nil {
		log.Fatal(err)
	}
	return file
}

func main() {
	cipherName := flag.String("cipher", "", "cipher to use (chacha20, xchacha20, chacha8, chacha12, salsa20, xsalsa20, salsa8, salsa12, rc4, rabbit, hc128, hc256, aes-ctr, aes-ofb, aes-cfb, aes-cfb8)")
	keyHex := flag.String("key", "", "key (hex)")
	nonceHex := flag.String("nonce", "", "nonce/iv (hex)")
	seek := flag.Uint64("seek", 0, "keystream byte offset to start at")
	isDecrypt := flag.Bool("decrypt", false, "decrypt instead of encrypt (only meaningful for CFB modes)")
	withDigest := flag.Bool("digest", false, "print a BLAKE2b-256 digest of the output to stderr")
	defaultConfigFile := "~/.streamcrypt.toml"
	if runtime.GOOS == "windows" {
		defaultConfigFile = "~/streamcrypt.toml"
	}
	configFile := flag.String("config", defaultConfigFile, "configuration file")
	flag.Parse()

	var tomlConf tomlConfig
	if tomlData, err := os.ReadFile(expandConfigFile(*configFile)); err == nil {
		if _, err = toml.Decode(string(tomlData), &tomlConf); err != nil {
			log.Fatal(err)
		}
	}

	var conf Conf
	conf.Cipher = tomlConf.Cipher
	if *cipherName != "" {
		conf.Cipher = *cipherName
	}
	if conf.Cipher == "" {
		log.Fatal("no cipher selected - use -cipher or the configuration file")
	}
	kh := tomlConf.Key
	if *keyHex != "" {
		kh = *keyHex
	}
	key, err := hex.DecodeString(kh)
	if err != nil {
		log.Fatal(err)
	}
	conf.Key = key
	nh := tomlConf.Nonce
	if *nonceHex != "" {
		nh = *nonceHex
	}
	nonce, err := hex.DecodeString(nh)
	if err != nil {
		log.Fatal(err)
	}
	conf.Nonce = nonce
	conf.Seek = *seek
	conf.Decrypt = *isDecrypt

	run(conf, *withDigest)
}
