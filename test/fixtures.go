// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package test

import (
	"fmt"
	"math/big"
)

// Fixture is a key produced by the q = e^-1 mod p construction together with a known
// ciphertext and the values the recovery is expected to find.
type Fixture struct {
	Name string
	N, E,
	P, Q, D,
	K *big.Int // q*e = k*p + 1
	Ciphertext,
	Plaintext *big.Int
	// Flag is the trailing part of the plaintext bytes; everything before it is padding.
	Flag []byte
}

// Iterations is the number of even k values tried before K is reached.
func (f *Fixture) Iterations() int {
	return int(new(big.Int).Rsh(f.K, 1).Int64())
}

// SmallFixture uses 16-bit primes: p = 40111, q = 65537^-1 mod p = 23971.
func SmallFixture() *Fixture {
	return &Fixture{
		Name:       "16-bit",
		N:          big.NewInt(961500781),
		E:          big.NewInt(65537),
		P:          big.NewInt(40111),
		Q:          big.NewInt(23971),
		D:          big.NewInt(811771973),
		K:          big.NewInt(39166),
		Ciphertext: big.NewInt(537624208),
		Plaintext:  big.NewInt(123456),
	}
}

// Fixture1024 is a 1024-bit vulnerable key encrypting 8 bytes of padding followed by a 50 byte flag.
// The same key and ciphertext live in cmd/weak-rsa/testdata.
func Fixture1024() *Fixture {
	return &Fixture{
		Name:       "1024-bit",
		N:          MustBigInt("107478729912205116475455406663890654582567658863268616689131667956233138785821356378404213854055729918702192966585183352222117038580923031724407316112452407831980026765550432827869840534699628498333096309582268447002403092534825685151219302574186658342505891337637764183888823202713361059740564078217482879867"),
		E:          big.NewInt(65537),
		P:          MustBigInt("11304668103195426920451943300771591266783110981157413866983002835375442243766119710633080548709275466007825316268189397731888217287662439972241699883937981"),
		Q:          MustBigInt("9507464432487381799616555699100181080039542717235063208880009006823986840897523325917788938824753118626414327510720100465175622327256028905656621667194007"),
		D:          MustBigInt("17345965275819667011930540553946189992215361212701102563757047957231455650054663570416426902884591228620673741666104403870383629355485037559684699978964690137005461238417368751329254950513173600922547442959269145076341037373993664410822115214010446585415034809733164201096016794648330148408236945920003510953"),
		K:          big.NewInt(55118),
		Ciphertext: MustBigInt("12182001139089303690682367984697770570121227821926235324653982390102535824503213988562457187329235993206075467309097996593692032781312243346095873122055611369667635510168506716363809399047268949007337006303564243016089509634164922737020967088170388888486825571845820655304909197263287964385826194144658747448"),
		Plaintext:  MustBigInt("12395263263697469035141045011379479089043166861449033136200168488053775061141120103421532841901312616583095038825429077138691714491274654845"),
		Flag:       []byte("flag{q_is_the_inverse_of_e_mod_p_so_n_falls_apart}"),
	}
}

// IndependentModulus1024 is the product of two independently drawn 512-bit primes.
// No even k below 2^16 yields a root for it with e = 65537.
func IndependentModulus1024() *big.Int {
	return MustBigInt("123180367635781964104987698261597549622870544290202045719080268813599093493023407812375881831762322467040061492637607441541647902781904655058672586369056008496194271904035900428804483630273394208345291716367178831497559034158854582099649232804117598232323379181927125425865896715209248994482869644600195070943")
}

// Fixture1024PEM is Fixture1024's public key as a PKIX "PUBLIC KEY" block.
const Fixture1024PEM = `-----BEGIN PUBLIC KEY-----
MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQCZDgbWyKtTArcNgWUVH4Uee4K6
LeJ8cqhNuvlryyUSMbMo4sszig0MLBK+vqrMox3LWxTlLlqAwJ2QKR9j7snaJe0T
fgugAJsThkZtnLzFOBFO2cK44J9ar593BgRwCn+TaqKIyz4WHXgQ2VARf8/UPLDz
Nzov3U79iN/HT4pDewIDAQAB
-----END PUBLIC KEY-----
`

// Fixture1024PKCS1PEM is the same key as a PKCS#1 "RSA PUBLIC KEY" block.
const Fixture1024PKCS1PEM = `-----BEGIN RSA PUBLIC KEY-----
MIGJAoGBAJkOBtbIq1MCtw2BZRUfhR57grot4nxyqE26+WvLJRIxsyjiyzOKDQws
Er6+qsyjHctbFOUuWoDAnZApH2Puydol7RN+C6AAmxOGRm2cvMU4EU7Zwrjgn1qv
n3cGBHAKf5NqoojLPhYdeBDZUBF/z9Q8sPM3Oi/dTv2I38dPikN7AgMBAAE=
-----END RSA PUBLIC KEY-----
`

func MustBigInt(s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Errorf("MustBigInt: invalid decimal %q", s))
	}
	return i
}
